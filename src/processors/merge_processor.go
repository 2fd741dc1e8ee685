// backend/src/processors/merge_processor.go
package processors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/username/wheelfolio/backend/src/models"
)

type snapshotMergerImpl struct {
	portfolio PortfolioProcessor
}

func NewSnapshotMerger(portfolio PortfolioProcessor) SnapshotMerger {
	return &snapshotMergerImpl{portfolio: portfolio}
}

// DecodeSnapshot reads an exported analysis envelope and validates its
// shape. A malformed payload yields an ImportError naming the offending
// field and nothing else happens: decode-then-merge keeps the import
// all-or-nothing.
func DecodeSnapshot(r io.Reader) (*models.AnalysisExport, error) {
	var snapshot models.AnalysisExport
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = typeErr.Value
			}
			return nil, &ImportError{Field: field, Err: err}
		}
		return nil, &ImportError{Field: "payload", Err: err}
	}

	for i, a := range snapshot.Assignments {
		if err := validateAssignment(a, fmt.Sprintf("assignments[%d]", i)); err != nil {
			return nil, err
		}
	}
	for i, c := range snapshot.CompletedCycles {
		if err := validateAssignment(c.Assignment, fmt.Sprintf("completedCycles[%d]", i)); err != nil {
			return nil, err
		}
	}
	return &snapshot, nil
}

// validateAssignment enforces the open/closed invariant: currentlyHeld,
// a nil exit date and a nil exit price either all hold or none do.
func validateAssignment(a models.Assignment, path string) error {
	if a.Quantity <= 0 {
		return &ImportError{Field: path + ".quantity", Err: errors.New("must be positive")}
	}
	if a.CurrentlyHeld {
		if a.ExitDate != nil || a.ExitPrice != nil {
			return &ImportError{Field: path + ".currentlyHeld", Err: errors.New("held assignment carries exit data")}
		}
		return nil
	}
	if a.ExitDate == nil {
		return &ImportError{Field: path + ".exitDate", Err: errors.New("closed assignment missing exit date")}
	}
	if a.ExitPrice == nil {
		return &ImportError{Field: path + ".exitPrice", Err: errors.New("closed assignment missing exit price")}
	}
	return nil
}

type assignmentKey struct {
	symbol         string
	assignmentDate string
}

type cycleKey struct {
	symbol         string
	assignmentDate string
	exitDate       string
}

// Merge concatenates existing rows first, then imported ones, deduplicating
// first-occurrence-wins. An existing assignment's closure data is therefore
// never overwritten by imported data for the same key, even when the import
// knows more; closure learned from new trades arrives through recomputation
// instead. Aggregates are recomputed in full from the merged cycle set.
func (m *snapshotMergerImpl) Merge(existing *models.Analysis, imported *models.AnalysisExport) *models.Analysis {
	if existing == nil {
		merged := &models.Analysis{
			Assignments:     imported.Assignments,
			CompletedCycles: imported.CompletedCycles,
			PortfolioStats:  imported.PortfolioStats,
			Stats:           imported.Stats,
		}
		merged.CurrentHoldings = filterHeld(merged.Assignments)
		return merged
	}

	seenAssignments := make(map[assignmentKey]bool)
	var assignments []models.Assignment
	for _, a := range append(append([]models.Assignment{}, existing.Assignments...), imported.Assignments...) {
		key := assignmentKey{a.Symbol, a.AssignmentDate}
		if seenAssignments[key] {
			continue
		}
		seenAssignments[key] = true
		assignments = append(assignments, a)
	}

	seenCycles := make(map[cycleKey]bool)
	var cycles []models.CompletedCycle
	for _, c := range append(append([]models.CompletedCycle{}, existing.CompletedCycles...), imported.CompletedCycles...) {
		key := cycleKey{c.Symbol, c.AssignmentDate, exitDateOrEpoch(c)}
		if seenCycles[key] {
			continue
		}
		seenCycles[key] = true
		cycles = append(cycles, c)
	}

	stats := m.portfolio.Process(cycles)
	holdings := filterHeld(assignments)

	return &models.Analysis{
		Trades:          existing.Trades,
		Assignments:     assignments,
		CompletedCycles: cycles,
		PortfolioStats:  stats,
		CurrentHoldings: holdings,
		Stats: models.AnalysisStats{
			TotalTrades:      len(existing.Trades),
			TotalAssignments: len(assignments),
			CurrentPositions: len(holdings),
		},
	}
}

func filterHeld(assignments []models.Assignment) []models.Assignment {
	var held []models.Assignment
	for _, a := range assignments {
		if a.CurrentlyHeld {
			held = append(held, a)
		}
	}
	return held
}
