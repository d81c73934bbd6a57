package fulfillment

import (
	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// DefaultMaxIterations bounds the per-article allocation loop. The guard is
// a bounded-effort policy against pathological inputs, not a correctness cap;
// normal data volumes stay far below it.
const DefaultMaxIterations = 100

// AllocateInput is the full read-side snapshot one allocation run works on.
type AllocateInput struct {
	Articles           []catalog.Article
	Lines              []quotes.InvoiceLine
	SentSupplierQuotes []quotes.SupplierQuote
	EligibleStock      []stock.Item
	ReservedStock      []stock.Item
	// MaxIterations falls back to DefaultMaxIterations when zero.
	MaxIterations int
}

// Allocate runs the greedy loop over the plan: per article, drain eligible
// stock lots in query order, then suppliers favorite-first and cheapest-first,
// assigning up to source capacity until remaining demand hits zero or both
// sequences are exhausted. Overridden furnishes are never reassigned.
func Allocate(plan *Plan, in AllocateInput) {
	maxIter := in.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	for _, article := range in.Articles {
		if !article.IsPhysical() {
			continue
		}

		stockSeq := eligibleLots(article.ID, in.EligibleStock)
		supplierSeq := OrderSuppliers(article.Suppliers)

		demand := func() Demand {
			return ComputeDemand(DemandInput{
				ArticleID:          article.ID,
				Lines:              in.Lines,
				Furnishes:          plan.Furnishes(),
				SentSupplierQuotes: in.SentSupplierQuotes,
				ReservedStock:      in.ReservedStock,
			})
		}

		stockCur, supplierCur := 0, 0
		remaining := demand().Remaining

	loop:
		for iter := 0; remaining > 0 && iter < maxIter; iter++ {
			switch {
			case stockCur < len(stockSeq):
				lot := stockSeq[stockCur]
				stockCur++
				ref := StockRef(article.ID, lot.ID)
				if plan.Overridden(ref) {
					continue
				}
				if _, ok := plan.Get(ref); !ok {
					continue
				}
				plan.SetQuantity(ref, min(remaining, lot.Quantity))

			case supplierCur < len(supplierSeq):
				link := supplierSeq[supplierCur]
				supplierCur++
				ref := SupplierRef(article.ID, link.SupplierID)
				if plan.Overridden(ref) {
					continue
				}
				if _, ok := plan.Get(ref); !ok {
					// Unpriced suppliers sit in the sequence but have no
					// candidate; skipping keeps them from absorbing demand.
					continue
				}
				plan.SetQuantity(ref, min(remaining, demand().TotalToFurnish))

			default:
				// Supply exhausted. Unmet demand surfaces in the article
				// summary, never as an error.
				break loop
			}

			remaining = demand().Remaining
		}
	}
}

// eligibleLots filters the bulk stock snapshot down to one article, keeping
// the underlying query order.
func eligibleLots(articleID int64, items []stock.Item) []stock.Item {
	var lots []stock.Item
	for _, item := range items {
		if item.ArticleID == articleID && item.Available() {
			lots = append(lots, item)
		}
	}
	return lots
}
