package fulfillment

import (
	"sort"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// BuildSources creates the candidate furnish list for every physical article
// in scope: one supplier candidate per priced supplier association and one
// stock candidate per eligible lot. Creation order only matters for reference
// uniqueness; allocation order is decided by the iterator.
func BuildSources(articles []catalog.Article, demands map[int64]Demand, stockItems []stock.Item) []Furnish {
	var candidates []Furnish
	for _, article := range articles {
		if !article.IsPhysical() {
			continue
		}
		demand := demands[article.ID]
		for _, link := range article.Suppliers {
			if !link.HasPrice {
				continue
			}
			candidates = append(candidates, Furnish{
				Ref:            SupplierRef(article.ID, link.SupplierID),
				ArticleID:      article.ID,
				SupplierID:     link.SupplierID,
				TotalToFurnish: demand.TotalToFurnish,
			})
		}
		for _, item := range stockItems {
			if item.ArticleID != article.ID || !item.Available() {
				continue
			}
			candidates = append(candidates, Furnish{
				Ref:            StockRef(article.ID, item.ID),
				ArticleID:      article.ID,
				StockID:        item.ID,
				MaxAvailable:   item.Quantity,
				TotalToFurnish: demand.TotalToFurnish,
			})
		}
	}
	return candidates
}

// OrderSuppliers returns the supplier associations in allocation order:
// favorites first, then ascending unit price among the priced, unpriced
// suppliers last. The sort is stable so equal entries keep association order.
func OrderSuppliers(links []catalog.ArticleSupplier) []catalog.ArticleSupplier {
	ordered := make([]catalog.ArticleSupplier, len(links))
	copy(ordered, links)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		if a.HasPrice != b.HasPrice {
			return a.HasPrice
		}
		if a.HasPrice && b.HasPrice {
			return a.UnitPrice < b.UnitPrice
		}
		return false
	})
	return ordered
}
