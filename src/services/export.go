// backend/src/services/export.go
package services

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/wheelfolio/backend/src/models"
)

// ExportSnapshot builds the portable analysis envelope. Trades themselves
// stay out of the payload; the metadata records how many went in.
func (s *analysisServiceImpl) ExportSnapshot() (*models.AnalysisExport, error) {
	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &models.AnalysisExport{
		ExportDate:      now,
		ExportVersion:   ExportVersion,
		PortfolioStats:  analysis.PortfolioStats,
		Assignments:     analysis.Assignments,
		CompletedCycles: analysis.CompletedCycles,
		CurrentHoldings: analysis.CurrentHoldings,
		Stats:           analysis.Stats,
		Metadata: map[string]any{
			"totalTradesProcessed": analysis.Stats.TotalTrades,
			"analysisTimestamp":    now,
			"dataSource":           strings.Join(sourceFileNames(analysis.Trades), ", "),
		},
	}, nil
}

var cyclesCSVHeader = []string{
	"Symbol", "Assignment Date", "Exit Date", "Days Duration",
	"Assignment Price", "Exit Price", "Quantity",
	"Put Premiums", "Call Premiums", "Total Premiums",
	"Capital Gain/Loss", "Total P&L", "Invested Capital",
	"Total Return %", "Annualized ROI %", "Premium Yield %",
	"Capital Yield %", "Daily Return %", "Performance Category",
}

// ExportCyclesCSV renders the completed cycles as a spreadsheet-friendly
// table. Ratios carry two decimals, the daily return four, everything else
// its shortest exact form.
func (s *analysisServiceImpl) ExportCyclesCSV() ([]byte, error) {
	cycles, err := s.GetCompletedCycles()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cyclesCSVHeader); err != nil {
		return nil, fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, c := range cycles {
		exitDate := "N/A"
		if c.ExitDate != nil {
			exitDate = *c.ExitDate
		}
		exitPrice := ""
		if c.ExitPrice != nil {
			exitPrice = formatNum(*c.ExitPrice)
		}
		row := []string{
			c.Symbol,
			c.AssignmentDate,
			exitDate,
			strconv.Itoa(c.DaysDuration),
			formatNum(c.AssignmentPrice),
			exitPrice,
			formatNum(c.Quantity),
			formatNum(c.PutPremiums),
			formatNum(c.CallPremiums),
			formatNum(c.TotalPremiums),
			formatNum(c.CapitalGainLoss),
			formatNum(c.TotalPnL),
			formatNum(c.InvestedCapital),
			strconv.FormatFloat(c.TotalReturnPct, 'f', 2, 64),
			strconv.FormatFloat(c.AnnualizedROI, 'f', 2, 64),
			strconv.FormatFloat(c.PremiumYield, 'f', 2, 64),
			strconv.FormatFloat(c.CapitalYield, 'f', 2, 64),
			strconv.FormatFloat(c.DailyReturn, 'f', 4, 64),
			c.PerformanceCategory,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("error writing CSV row for %s: %w", c.Symbol, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV output: %w", err)
	}
	return buf.Bytes(), nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type xmlMetadata struct {
	TotalTrades      int    `xml:"TotalTrades"`
	TotalAssignments int    `xml:"TotalAssignments"`
	CurrentPositions int    `xml:"CurrentPositions"`
	DataSource       string `xml:"DataSource"`
}

type xmlPortfolioStats struct {
	TotalPnL          float64 `xml:"TotalPnL"`
	WinRate           float64 `xml:"WinRate"`
	AvgReturnPerTrade float64 `xml:"AvgReturnPerTrade"`
	TotalInvested     float64 `xml:"TotalInvested"`
}

type xmlPosition struct {
	Symbol             string  `xml:"Symbol"`
	AssignmentDate     string  `xml:"AssignmentDate"`
	AssignmentPrice    float64 `xml:"AssignmentPrice"`
	Quantity           float64 `xml:"Quantity"`
	PutPremiums        float64 `xml:"PutPremiums"`
	CallPremiums       float64 `xml:"CallPremiums"`
	TotalPremiums      float64 `xml:"TotalPremiums"`
	EffectiveBreakEven float64 `xml:"EffectiveBreakEven"`
}

type xmlCycle struct {
	Symbol              string  `xml:"Symbol"`
	AssignmentDate      string  `xml:"AssignmentDate"`
	ExitDate            string  `xml:"ExitDate"`
	DaysDuration        int     `xml:"DaysDuration"`
	TotalPnL            float64 `xml:"TotalPnL"`
	TotalReturnPct      float64 `xml:"TotalReturnPct"`
	AnnualizedROI       float64 `xml:"AnnualizedROI"`
	PerformanceCategory string  `xml:"PerformanceCategory"`
}

type xmlAnalysis struct {
	XMLName         xml.Name          `xml:"WheelStrategyAnalysis"`
	ExportDate      string            `xml:"exportDate,attr"`
	Version         string            `xml:"version,attr"`
	Metadata        xmlMetadata       `xml:"Metadata"`
	PortfolioStats  xmlPortfolioStats `xml:"PortfolioStats"`
	CurrentHoldings []xmlPosition     `xml:"CurrentHoldings>Position"`
	CompletedCycles []xmlCycle        `xml:"CompletedCycles>Cycle"`
}

// ExportXML renders a condensed analysis document for external tooling.
func (s *analysisServiceImpl) ExportXML() ([]byte, error) {
	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, err
	}

	doc := xmlAnalysis{
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Version:    ExportVersion,
		Metadata: xmlMetadata{
			TotalTrades:      analysis.Stats.TotalTrades,
			TotalAssignments: analysis.Stats.TotalAssignments,
			CurrentPositions: analysis.Stats.CurrentPositions,
			DataSource:       strings.Join(sourceFileNames(analysis.Trades), ", "),
		},
		PortfolioStats: xmlPortfolioStats{
			TotalPnL:          analysis.PortfolioStats.TotalPnL,
			WinRate:           analysis.PortfolioStats.WinRate,
			AvgReturnPerTrade: analysis.PortfolioStats.AvgReturnPerTrade,
			TotalInvested:     analysis.PortfolioStats.TotalInvested,
		},
	}

	for _, h := range analysis.CurrentHoldings {
		doc.CurrentHoldings = append(doc.CurrentHoldings, xmlPosition{
			Symbol:             h.Symbol,
			AssignmentDate:     h.AssignmentDate,
			AssignmentPrice:    h.AssignmentPrice,
			Quantity:           h.Quantity,
			PutPremiums:        h.PutPremiums,
			CallPremiums:       h.CallPremiums,
			TotalPremiums:      h.TotalPremiums,
			EffectiveBreakEven: h.EffectiveBreakEven,
		})
	}

	for _, c := range analysis.CompletedCycles {
		exitDate := ""
		if c.ExitDate != nil {
			exitDate = *c.ExitDate
		}
		doc.CompletedCycles = append(doc.CompletedCycles, xmlCycle{
			Symbol:              c.Symbol,
			AssignmentDate:      c.AssignmentDate,
			ExitDate:            exitDate,
			DaysDuration:        c.DaysDuration,
			TotalPnL:            c.TotalPnL,
			TotalReturnPct:      c.TotalReturnPct,
			AnnualizedROI:       c.AnnualizedROI,
			PerformanceCategory: c.PerformanceCategory,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling analysis XML: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
