package fulfillment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

func compileFixture() CompileInput {
	return CompileInput{
		Furnishes: []Furnish{
			{Ref: StockRef(1, 100), ArticleID: 1, StockID: 100, Quantity: 4, MaxAvailable: 4},
			{Ref: SupplierRef(1, 9), ArticleID: 1, SupplierID: 9, Quantity: 6},
		},
		Demands: map[int64]Demand{
			1: {TotalToFurnish: 10, AlreadyFurnished: 10, Remaining: 0},
		},
		Articles: []catalog.Article{
			{ID: 1, Name: "Widget", Unit: "pcs", Type: catalog.ArticleTypeProduct, TaxRate: 20,
				Suppliers: []catalog.ArticleSupplier{{SupplierID: 9, Reference: "W-9", UnitPrice: 5, HasPrice: true, Favorite: true}}},
		},
		Suppliers: []catalog.Supplier{{ID: 9, Name: "Acme"}},
		Quotes: []quotes.Quote{
			{ID: 42, Lines: []quotes.InvoiceLine{{ArticleID: 1, Type: quotes.LineTypeProduct, Quantity: 10}}},
		},
		Stock: []stock.Item{{ID: 100, ArticleID: 1, Quantity: 4, State: stock.ItemStateStock}},
	}
}

func TestCompileEmitsWithdrawalAndOrder(t *testing.T) {
	result := Compile(compileFixture())
	require.Len(t, result.Actions, 2)

	var order *SupplierOrder
	var withdrawal *StockWithdrawal
	for _, action := range result.Actions {
		switch action.Type {
		case ActionOrderItems:
			order = action.Order
		case ActionWithdrawStock:
			withdrawal = action.Withdraw
		}
	}

	require.NotNil(t, withdrawal)
	require.Equal(t, int64(42), withdrawal.QuoteID)
	require.Equal(t, int64(100), withdrawal.Item.ID)
	require.InDelta(t, 4.0, withdrawal.Quantity, 0.0001)

	require.NotNil(t, order)
	require.Equal(t, int64(9), order.SupplierID)
	require.Equal(t, "Acme", order.SupplierName)
	require.Equal(t, int64(42), order.QuoteID)
	require.Len(t, order.Lines, 1)
	line := order.Lines[0]
	require.Equal(t, "W-9", line.Reference)
	require.InDelta(t, 6.0, line.Quantity, 0.0001)
	require.True(t, line.UnitPrice.Equal(decimal.NewFromInt(5)))
	require.True(t, line.LineTotal.Equal(decimal.NewFromInt(30)))
	require.True(t, line.Discount.IsZero())
}

func TestCompileFiltersZeroQuantity(t *testing.T) {
	in := compileFixture()
	in.Furnishes[0].Quantity = 0
	result := Compile(in)

	for _, action := range result.Actions {
		require.NotEqual(t, ActionWithdrawStock, action.Type)
	}
}

func TestCompileGroupsArticlesPerSupplier(t *testing.T) {
	in := compileFixture()
	in.Articles = append(in.Articles, catalog.Article{
		ID: 2, Name: "Gadget", Unit: "pcs", Type: catalog.ArticleTypeProduct, TaxRate: 20,
		Suppliers: []catalog.ArticleSupplier{{SupplierID: 9, Reference: "G-9", UnitPrice: 3, HasPrice: true}},
	})
	in.Quotes[0].Lines = append(in.Quotes[0].Lines, quotes.InvoiceLine{ArticleID: 2, Type: quotes.LineTypeProduct, Quantity: 4})
	in.Furnishes = []Furnish{
		{Ref: SupplierRef(1, 9), ArticleID: 1, SupplierID: 9, Quantity: 6},
		{Ref: SupplierRef(2, 9), ArticleID: 2, SupplierID: 9, Quantity: 4},
	}
	result := Compile(in)

	require.Len(t, result.Actions, 1)
	order := result.Actions[0].Order
	require.Len(t, order.Lines, 2)
	require.InDelta(t, 6.0, order.Lines[0].Quantity, 0.0001)
	require.InDelta(t, 4.0, order.Lines[1].Quantity, 0.0001)
}

func TestCompileOmitsMissingLot(t *testing.T) {
	in := compileFixture()
	in.Stock = nil
	result := Compile(in)

	for _, action := range result.Actions {
		require.NotEqual(t, ActionWithdrawStock, action.Type)
	}
}

func TestCompileOmitsUnpricedLine(t *testing.T) {
	in := compileFixture()
	in.Articles[0].Suppliers[0].HasPrice = false
	result := Compile(in)

	for _, action := range result.Actions {
		require.NotEqual(t, ActionOrderItems, action.Type)
	}
}

func TestCompileOmitsOrderWithoutOriginQuote(t *testing.T) {
	in := compileFixture()
	in.Quotes = []quotes.Quote{{ID: 42}}
	result := Compile(in)

	for _, action := range result.Actions {
		require.NotEqual(t, ActionOrderItems, action.Type)
	}
}

func TestCompileAlwaysEmitsSummaries(t *testing.T) {
	in := compileFixture()
	in.Furnishes = nil
	in.Demands[1] = Demand{TotalToFurnish: 10, Remaining: 10}
	result := Compile(in)

	require.Empty(t, result.Actions)
	require.Len(t, result.Articles, 1)
	require.Equal(t, int64(1), result.Articles[0].ArticleID)
	require.InDelta(t, 10.0, result.Articles[0].RemainingQuantity, 0.0001)
}
