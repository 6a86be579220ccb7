package feed

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/eventfeed/internal/dates"
	"github.com/JakeFAU/eventfeed/internal/metrics"
	"github.com/JakeFAU/eventfeed/internal/table"
)

// state is the accumulator threaded through the row fold.
type state struct {
	ctx      dates.Context
	listings []Listing
	stats    Stats
}

// Parse reads the event table out of a markdown document. Rows are processed
// in order because each anchor row sets the month for the rows after it.
// Rows that are not day ranges, or that precede the first anchor, are
// skipped. A data row without a valid link aborts the parse.
func Parse(doc string, logger *zap.Logger) ([]Listing, Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	acc := state{listings: []Listing{}}
	for i, row := range table.Rows(table.Extract(doc)) {
		skipped := acc.stats.Skipped
		var err error
		acc, err = step(acc, row)
		if err != nil {
			return nil, acc.stats, fmt.Errorf("table row %d: %w", i+1, err)
		}
		if acc.stats.Skipped > skipped {
			logger.Debug("row skipped", zap.Int("row", i+1), zap.String("date", row.Date()))
		}
	}
	return acc.listings, acc.stats, nil
}

func step(acc state, row table.Row) (state, error) {
	acc.stats.Rows++
	ctx, rng, ok := dates.Step(acc.ctx, row.Date())
	acc.ctx = ctx
	if !ok {
		acc.stats.Skipped++
		metrics.ObserveRow(metrics.RowSkipped)
		return acc, nil
	}

	name, url, err := ParseLink(row.NameAndURL())
	if err != nil {
		return acc, fmt.Errorf("%w in %q", err, row.NameAndURL())
	}

	acc.listings = append(acc.listings, Listing{
		Name:     name,
		URL:      url,
		Topic:    NormalizeTopic(row.Topic()),
		Price:    NormalizePrice(row.Price()),
		StartDay: rng.StartDay(),
		EndDay:   rng.EndDay(),
	})
	acc.stats.Listings++
	metrics.ObserveRow(metrics.RowListing)
	return acc, nil
}
