package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// CompileInput carries the allocation output plus the reference data needed
// to turn furnishes into persistable actions.
type CompileInput struct {
	Furnishes []Furnish
	Demands   map[int64]Demand
	Articles  []catalog.Article
	Suppliers []catalog.Supplier
	Quotes    []quotes.Quote
	Stock     []stock.Item
}

// Compile turns non-zero furnishes into actions: one purchase order per
// supplier and one withdrawal per stock lot, plus a progress summary for
// every article in scope. Missing reference data never fails compilation;
// the affected line or action is omitted.
func Compile(in CompileInput) Result {
	articleByID := make(map[int64]catalog.Article, len(in.Articles))
	for _, a := range in.Articles {
		articleByID[a.ID] = a
	}
	supplierByID := make(map[int64]catalog.Supplier, len(in.Suppliers))
	for _, s := range in.Suppliers {
		supplierByID[s.ID] = s
	}
	lotByID := make(map[int64]stock.Item, len(in.Stock))
	for _, item := range in.Stock {
		lotByID[item.ID] = item
	}

	result := Result{
		Actions:   []Action{},
		Furnishes: in.Furnishes,
		Articles:  summarize(in.Articles, in.Demands),
	}

	// Supplier groups keep first-seen order so output is deterministic.
	var supplierOrder []int64
	grouped := make(map[int64][]Furnish)
	for _, f := range in.Furnishes {
		if f.Quantity <= 0 || f.SupplierID == 0 {
			continue
		}
		if _, seen := grouped[f.SupplierID]; !seen {
			supplierOrder = append(supplierOrder, f.SupplierID)
		}
		grouped[f.SupplierID] = append(grouped[f.SupplierID], f)
	}

	for _, supplierID := range supplierOrder {
		if order, ok := compileOrder(supplierID, grouped[supplierID], articleByID, supplierByID, in.Quotes); ok {
			result.Actions = append(result.Actions, Action{Type: ActionOrderItems, Order: &order})
		}
	}

	for _, f := range in.Furnishes {
		if f.Quantity <= 0 || f.StockID == 0 {
			continue
		}
		lot, ok := lotByID[f.StockID]
		if !ok {
			// Lot deleted between read and compile.
			continue
		}
		quoteID, ok := originQuote(f.ArticleID, in.Quotes)
		if !ok {
			continue
		}
		withdrawal := StockWithdrawal{QuoteID: quoteID, Item: lot, Quantity: f.Quantity}
		result.Actions = append(result.Actions, Action{Type: ActionWithdrawStock, Withdraw: &withdrawal})
	}

	return result
}

func compileOrder(supplierID int64, group []Furnish, articles map[int64]catalog.Article, suppliers map[int64]catalog.Supplier, qs []quotes.Quote) (SupplierOrder, bool) {
	order := SupplierOrder{SupplierID: supplierID}
	if s, ok := suppliers[supplierID]; ok {
		order.SupplierName = s.Name
	}

	// Quantities for the same article can arrive in several furnishes when
	// multiple quotes drive the run; each article gets a single summed line.
	var articleOrder []int64
	qtyByArticle := make(map[int64]float64)
	for _, f := range group {
		if _, seen := qtyByArticle[f.ArticleID]; !seen {
			articleOrder = append(articleOrder, f.ArticleID)
		}
		qtyByArticle[f.ArticleID] += f.Quantity
	}

	var total float64
	for _, articleID := range articleOrder {
		article, ok := articles[articleID]
		if !ok {
			continue
		}
		link, ok := supplierLink(article, supplierID)
		if !ok || !link.HasPrice {
			continue
		}
		if order.QuoteID == 0 {
			if quoteID, ok := originQuote(articleID, qs); ok {
				order.QuoteID = quoteID
			}
		}
		qty := qtyByArticle[articleID]
		unitPrice := decimal.NewFromFloat(link.UnitPrice)
		order.Lines = append(order.Lines, OrderLine{
			ArticleID:   articleID,
			Reference:   link.Reference,
			Name:        article.Name,
			Description: article.Description,
			Unit:        article.Unit,
			UnitPrice:   unitPrice,
			Quantity:    qty,
			TaxRate:     decimal.NewFromFloat(article.TaxRate),
			Discount:    decimal.Zero,
			LineTotal:   unitPrice.Mul(decimal.NewFromFloat(qty)),
		})
		total += qty
	}

	if total <= 0 || order.QuoteID == 0 {
		return SupplierOrder{}, false
	}
	return order, true
}

func supplierLink(article catalog.Article, supplierID int64) (catalog.ArticleSupplier, bool) {
	for _, link := range article.Suppliers {
		if link.SupplierID == supplierID {
			return link, true
		}
	}
	return catalog.ArticleSupplier{}, false
}

// originQuote returns the first quote whose lines reference the article.
func originQuote(articleID int64, qs []quotes.Quote) (int64, bool) {
	for _, q := range qs {
		for _, line := range q.Lines {
			if line.ArticleID == articleID {
				return q.ID, true
			}
		}
	}
	return 0, false
}

func summarize(articles []catalog.Article, demands map[int64]Demand) []ArticleSummary {
	summaries := make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		d := demands[a.ID]
		summaries = append(summaries, ArticleSummary{
			ArticleID:                a.ID,
			RemainingQuantity:        d.Remaining,
			TotalToFurnish:           d.TotalToFurnish,
			AlreadyFurnishedQuantity: d.AlreadyFurnished,
		})
	}
	return summaries
}
