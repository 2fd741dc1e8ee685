// backend/src/processors/dedup_processor.go
package processors

import (
	"github.com/username/wheelfolio/backend/src/models"
)

type dedupProcessorImpl struct{}

func NewDedupProcessor() TradeDeduplicator {
	return &dedupProcessorImpl{}
}

// Process removes exact duplicates from a concatenation of trade sequences,
// keeping the first occurrence in input order. Two records are duplicates
// iff they match on (symbol, tradeDate, proceeds, buySell, quantity);
// commission, price, strike and expiry are intentionally not part of the
// key, so a re-export with a corrected commission still collapses onto the
// first-seen record.
func (p *dedupProcessorImpl) Process(trades []models.TradeRecord) []models.TradeRecord {
	seen := make(map[models.TradeIdentity]bool, len(trades))
	unique := make([]models.TradeRecord, 0, len(trades))

	for _, t := range trades {
		key := t.Identity()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, t)
	}
	return unique
}
