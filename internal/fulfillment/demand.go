package fulfillment

import (
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// DemandInput bundles the read-side snapshot ComputeDemand works on.
// Slices may contain entries for other articles; only matching ones count.
type DemandInput struct {
	ArticleID          int64
	Lines              []quotes.InvoiceLine
	Furnishes          []Furnish
	SentSupplierQuotes []quotes.SupplierQuote
	ReservedStock      []stock.Item
}

// ComputeDemand derives the three demand quantities for one article.
// Pure: no I/O and no mutation of inputs, safe to call repeatedly during
// allocation. TotalToFurnish only moves when the sent-order or reserved
// baselines move, which cannot happen within one run.
func ComputeDemand(in DemandInput) Demand {
	var requested, delivered float64
	for _, line := range in.Lines {
		if line.ArticleID != in.ArticleID || !line.Requires() {
			continue
		}
		requested += line.Quantity
		delivered += line.QuantityReady
	}

	var ordered float64
	for _, sq := range in.SentSupplierQuotes {
		for _, line := range sq.Lines {
			if line.ArticleID == in.ArticleID {
				ordered += line.Quantity
			}
		}
	}

	var reserved float64
	for _, item := range in.ReservedStock {
		if item.ArticleID == in.ArticleID && item.State == stock.ItemStateReserved {
			reserved += item.Quantity
		}
	}

	total := requested - delivered - ordered - reserved
	if total < 0 {
		total = 0
	}

	var furnished float64
	for _, f := range in.Furnishes {
		if f.ArticleID == in.ArticleID {
			furnished += f.Quantity
		}
	}

	return Demand{
		TotalToFurnish:   total,
		AlreadyFurnished: furnished,
		Remaining:        total - furnished,
	}
}
