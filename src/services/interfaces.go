// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"

	"github.com/username/wheelfolio/backend/src/models"
)

// IngestResult reports what a single document upload contributed.
type IngestResult struct {
	Filename       string `json:"filename"`
	TradesParsed   int    `json:"tradesParsed"`
	TradesInserted int    `json:"tradesInserted"`
}

// Define common service errors
var (
	ErrParsingFailed = errors.New("trade document parsing failed")
	ErrImportFailed  = errors.New("analysis snapshot import failed")
)

// AnalysisService is the core orchestration surface: document ingestion,
// the reconstruction pipeline, snapshot import/export and trade access.
type AnalysisService interface {
	// IngestDocument parses one trade confirmation document and persists
	// its fills. A structurally malformed document fails on its own and
	// leaves previously ingested documents untouched.
	IngestDocument(fileReader io.Reader, source, filename string, filesize int64) (*IngestResult, error)

	// ImportSnapshot merges a previously exported analysis into the
	// current state. All-or-nothing: a malformed payload changes nothing.
	ImportSnapshot(fileReader io.Reader, filename string) (*models.Analysis, error)

	// GetAnalysis recomputes (or serves from cache) the full analysis
	// over every persisted trade plus every imported snapshot.
	GetAnalysis() (*models.Analysis, error)

	GetCurrentHoldings() ([]models.HoldingView, error)
	GetCompletedCycles() ([]models.CompletedCycle, error)
	GetTrades() ([]models.TradeRecord, error)

	// DeleteAllData removes all trades, uploads and imported snapshots.
	DeleteAllData() error

	ExportSnapshot() (*models.AnalysisExport, error)
	ExportCyclesCSV() ([]byte, error)
	ExportXML() ([]byte, error)

	InvalidateCache()
}
