// backend/src/processors/interfaces.go
package processors

import (
	"fmt"

	"github.com/username/wheelfolio/backend/src/models"
)

// TradeDeduplicator collapses duplicate fills that arise from overlapping
// export windows or repeated imports.
type TradeDeduplicator interface {
	Process(trades []models.TradeRecord) []models.TradeRecord
}

// AssignmentProcessor infers put-assignment events from a deduplicated,
// unordered trade sequence.
type AssignmentProcessor interface {
	Process(trades []models.TradeRecord) []models.Assignment
}

// CycleProcessor projects closed assignments into performance cycles.
type CycleProcessor interface {
	Process(assignments []models.Assignment) []models.CompletedCycle
}

// PortfolioProcessor reduces the completed-cycle set into portfolio stats.
type PortfolioProcessor interface {
	Process(cycles []models.CompletedCycle) models.PortfolioStats
}

// SnapshotMerger splices a previously exported snapshot into an analysis,
// deduplicating at the assignment and cycle level and recomputing the
// aggregates.
type SnapshotMerger interface {
	Merge(existing *models.Analysis, imported *models.AnalysisExport) *models.Analysis
}

// ImportError reports a malformed snapshot payload during import. The merge
// aborts and the existing in-memory analysis is left untouched.
type ImportError struct {
	Field string
	Err   error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: invalid field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("import: invalid field %q", e.Field)
}

func (e *ImportError) Unwrap() error { return e.Err }
