package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

func TestComputeDemandBaseline(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 10, QuantityReady: 2},
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 5},
			{ArticleID: 2, Type: quotes.LineTypeProduct, Quantity: 99},
		},
	})
	require.InDelta(t, 13.0, d.TotalToFurnish, 0.0001)
	require.InDelta(t, 0.0, d.AlreadyFurnished, 0.0001)
	require.InDelta(t, 13.0, d.Remaining, 0.0001)
}

func TestComputeDemandExcludesNonContributingLines(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeService, Quantity: 4},
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 3, Optional: true},
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 2, Optional: true, OptionalChecked: true},
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 0},
		},
	})
	require.InDelta(t, 2.0, d.TotalToFurnish, 0.0001)
}

func TestComputeDemandSubtractsOrderedAndReserved(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 10},
		},
		SentSupplierQuotes: []quotes.SupplierQuote{
			{Lines: []quotes.SupplierQuoteLine{{ArticleID: 1, Quantity: 3}, {ArticleID: 2, Quantity: 7}}},
		},
		ReservedStock: []stock.Item{
			{ArticleID: 1, State: stock.ItemStateReserved, Quantity: 2},
			{ArticleID: 1, State: stock.ItemStateStock, Quantity: 5},
		},
	})
	require.InDelta(t, 5.0, d.TotalToFurnish, 0.0001)
}

func TestComputeDemandClampsNegativeTotal(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 2},
		},
		SentSupplierQuotes: []quotes.SupplierQuote{
			{Lines: []quotes.SupplierQuoteLine{{ArticleID: 1, Quantity: 9}}},
		},
	})
	require.InDelta(t, 0.0, d.TotalToFurnish, 0.0001)
}

func TestComputeDemandCountsFurnished(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 10},
		},
		Furnishes: []Furnish{
			{Ref: SupplierRef(1, 3), ArticleID: 1, SupplierID: 3, Quantity: 4},
			{Ref: StockRef(1, 7), ArticleID: 1, StockID: 7, Quantity: 2},
			{Ref: SupplierRef(2, 3), ArticleID: 2, SupplierID: 3, Quantity: 50},
		},
	})
	require.InDelta(t, 6.0, d.AlreadyFurnished, 0.0001)
	require.InDelta(t, 4.0, d.Remaining, 0.0001)
}

func TestComputeDemandRemainingMayGoNegative(t *testing.T) {
	d := ComputeDemand(DemandInput{
		ArticleID: 1,
		Lines: []quotes.InvoiceLine{
			{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 3},
		},
		Furnishes: []Furnish{
			{Ref: SupplierRef(1, 3), ArticleID: 1, SupplierID: 3, Quantity: 5},
		},
	})
	require.InDelta(t, -2.0, d.Remaining, 0.0001)
}
