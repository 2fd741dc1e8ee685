// backend/src/services/analysis_service.go
package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/wheelfolio/backend/src/database"
	"github.com/username/wheelfolio/backend/src/logger"
	"github.com/username/wheelfolio/backend/src/models"
	"github.com/username/wheelfolio/backend/src/parsers"
	"github.com/username/wheelfolio/backend/src/processors"
)

const (
	ckAnalysis      = "agg_wheel_analysis"
	ExportVersion   = "1.0"
	maxSnapshotSize = 32 << 20 // defensive cap on snapshot payloads
)

type analysisServiceImpl struct {
	deduplicator processors.TradeDeduplicator
	detector     processors.AssignmentProcessor
	cycles       processors.CycleProcessor
	portfolio    processors.PortfolioProcessor
	merger       processors.SnapshotMerger
	reportCache  *cache.Cache
	cacheTTL     time.Duration
}

func NewAnalysisService(
	deduplicator processors.TradeDeduplicator,
	detector processors.AssignmentProcessor,
	cycles processors.CycleProcessor,
	portfolio processors.PortfolioProcessor,
	merger processors.SnapshotMerger,
	reportCache *cache.Cache,
	cacheTTL time.Duration,
) AnalysisService {
	return &analysisServiceImpl{
		deduplicator: deduplicator,
		detector:     detector,
		cycles:       cycles,
		portfolio:    portfolio,
		merger:       merger,
		reportCache:  reportCache,
		cacheTTL:     cacheTTL,
	}
}

func (s *analysisServiceImpl) IngestDocument(fileReader io.Reader, source, filename string, filesize int64) (*IngestResult, error) {
	startTime := time.Now()
	logger.L.Info("IngestDocument START", "source", source, "filename", filename)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	trades, err := parser.Parse(fileReader, filename)
	if err != nil {
		perr := &parsers.ParseError{Document: filename, Err: err}
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, perr)
	}

	result := &IngestResult{Filename: filename, TradesParsed: len(trades)}
	if len(trades) == 0 {
		logger.L.Warn("Document contained no trade confirmations", "filename", filename)
		return result, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO trades
		(symbol, underlying_symbol, asset_category, buy_sell, quantity, price, proceeds,
		trade_date, strike, expiry, put_call, commission, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(
			nullableArg(t.Symbol), nullableArg(t.UnderlyingSymbol), t.AssetCategory, t.BuySell,
			t.Quantity, t.Price, t.Proceeds,
			nullableArg(t.TradeDate), nullableArg(t.Strike), nullableArg(t.Expiry), nullableArg(t.PutCall),
			t.Commission, t.SourceFile,
		)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate trade on ingest", "filename", filename, "symbol", t.Symbol)
				continue
			}
			return nil, fmt.Errorf("error inserting trade from %s: %w", filename, err)
		}
		result.TradesInserted++
	}

	_, err = dbTx.Exec(`
		INSERT INTO uploads_history (source, filename, file_size, trade_count)
		VALUES (?, ?, ?, ?)`,
		source, filename, filesize, result.TradesInserted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record upload in history: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing trades: %w", err)
	}

	s.InvalidateCache()
	logger.L.Info("IngestDocument END",
		"filename", filename,
		"parsed", result.TradesParsed,
		"inserted", result.TradesInserted,
		"duration", time.Since(startTime),
	)
	return result, nil
}

func (s *analysisServiceImpl) ImportSnapshot(fileReader io.Reader, filename string) (*models.Analysis, error) {
	payload, err := io.ReadAll(io.LimitReader(fileReader, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", ErrImportFailed, err)
	}

	// Decode and validate before anything is persisted so a bad payload
	// cannot corrupt the current analysis.
	if _, err := processors.DecodeSnapshot(bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	_, err = database.DB.Exec(`
		INSERT INTO analysis_snapshots (filename, payload) VALUES (?, ?)`,
		filename, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to persist imported snapshot: %w", err)
	}

	s.InvalidateCache()
	logger.L.Info("Snapshot imported", "filename", filename, "bytes", len(payload))
	return s.GetAnalysis()
}

// GetAnalysis always recomputes from the full trade set, never per
// document, so the order-sensitive dedup and closing-sale policies stay
// deterministic across uploads. Imported snapshots are spliced in
// afterwards, oldest import first.
func (s *analysisServiceImpl) GetAnalysis() (*models.Analysis, error) {
	if cached, found := s.reportCache.Get(ckAnalysis); found {
		return cached.(*models.Analysis), nil
	}

	trades, err := fetchAllTrades()
	if err != nil {
		return nil, err
	}

	uniqueTrades := s.deduplicator.Process(trades)
	assignments := s.detector.Process(uniqueTrades)
	completedCycles := s.cycles.Process(assignments)
	stats := s.portfolio.Process(completedCycles)

	var holdings []models.Assignment
	for _, a := range assignments {
		if a.CurrentlyHeld {
			holdings = append(holdings, a)
		}
	}

	analysis := &models.Analysis{
		Trades:          uniqueTrades,
		Assignments:     assignments,
		CompletedCycles: completedCycles,
		PortfolioStats:  stats,
		CurrentHoldings: holdings,
		Stats: models.AnalysisStats{
			TotalTrades:      len(uniqueTrades),
			TotalAssignments: len(assignments),
			CurrentPositions: len(holdings),
		},
	}

	snapshots, err := fetchStoredSnapshots()
	if err != nil {
		return nil, err
	}
	for _, snapshot := range snapshots {
		analysis = s.merger.Merge(analysis, snapshot)
	}

	s.reportCache.Set(ckAnalysis, analysis, s.cacheTTL)
	return analysis, nil
}

func (s *analysisServiceImpl) GetCurrentHoldings() ([]models.HoldingView, error) {
	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, err
	}

	views := make([]models.HoldingView, 0, len(analysis.CurrentHoldings))
	for _, a := range analysis.CurrentHoldings {
		premiumPerShare := 0.0
		if a.Quantity > 0 {
			premiumPerShare = a.TotalPremiums / a.Quantity
		}
		minStrike := math.Ceil(a.EffectiveBreakEven)
		views = append(views, models.HoldingView{
			Assignment:      a,
			PremiumPerShare: premiumPerShare,
			MinCallStrike:   minStrike,
			SafeCallStrike:  minStrike + 5,
		})
	}
	return views, nil
}

func (s *analysisServiceImpl) GetCompletedCycles() ([]models.CompletedCycle, error) {
	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, err
	}
	return analysis.CompletedCycles, nil
}

func (s *analysisServiceImpl) GetTrades() ([]models.TradeRecord, error) {
	return fetchAllTrades()
}

func (s *analysisServiceImpl) DeleteAllData() error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"trades", "uploads_history", "analysis_snapshots"} {
		if _, err := dbTx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing delete: %w", err)
	}

	s.InvalidateCache()
	logger.L.Info("All trades, uploads and snapshots deleted")
	return nil
}

func (s *analysisServiceImpl) InvalidateCache() {
	s.reportCache.Delete(ckAnalysis)
}

func nullableArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fetchAllTrades() ([]models.TradeRecord, error) {
	logger.L.Debug("Fetching trades from DB")
	rows, err := database.DB.Query(`
		SELECT id, symbol, underlying_symbol, asset_category, buy_sell, quantity, price,
		       proceeds, trade_date, strike, expiry, put_call, commission, source_file
		FROM trades
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var symbol, underlying, tradeDate, strike, expiry, putCall sql.NullString
		scanErr := rows.Scan(
			&t.ID, &symbol, &underlying, &t.AssetCategory, &t.BuySell, &t.Quantity, &t.Price,
			&t.Proceeds, &tradeDate, &strike, &expiry, &putCall, &t.Commission, &t.SourceFile,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning trade row: %w", scanErr)
		}
		t.Symbol = nullableString(symbol)
		t.UnderlyingSymbol = nullableString(underlying)
		t.TradeDate = nullableString(tradeDate)
		t.Strike = nullableString(strike)
		t.Expiry = nullableString(expiry)
		t.PutCall = nullableString(putCall)
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows: %w", err)
	}
	return trades, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func fetchStoredSnapshots() ([]*models.AnalysisExport, error) {
	rows, err := database.DB.Query(`SELECT payload FROM analysis_snapshots ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.AnalysisExport
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("error scanning snapshot row: %w", err)
		}
		snapshot, err := processors.DecodeSnapshot(strings.NewReader(payload))
		if err != nil {
			// A stored snapshot passed validation on import; a decode
			// failure here means the row was tampered with. Skip it.
			logger.L.Error("Skipping undecodable stored snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// sourceFileNames lists the distinct document names that contributed
// trades, sorted, for the export metadata.
func sourceFileNames(trades []models.TradeRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range trades {
		if t.SourceFile == "" || seen[t.SourceFile] {
			continue
		}
		seen[t.SourceFile] = true
		names = append(names, t.SourceFile)
	}
	sort.Strings(names)
	return names
}
