package quotes

import (
	"errors"
	"time"
)

// QuoteStatus enumerates sales quote lifecycle states.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusInvoiced QuoteStatus = "invoiced"
)

// SupplierQuoteStatus enumerates supplier order document states.
type SupplierQuoteStatus string

const (
	SupplierQuoteStatusDraft    SupplierQuoteStatus = "draft"
	SupplierQuoteStatusSent     SupplierQuoteStatus = "sent"
	SupplierQuoteStatusReceived SupplierQuoteStatus = "received"
)

// LineType distinguishes invoice line kinds.
type LineType string

const (
	LineTypeProduct   LineType = "product"
	LineTypeService   LineType = "service"
	LineTypeSeparator LineType = "separator"
)

// Quote is a sales quotation whose lines may require physical articles.
type Quote struct {
	ID         int64         `json:"id"`
	Number     string        `json:"number"`
	CustomerID int64         `json:"customer_id"`
	Status     QuoteStatus   `json:"status"`
	Lines      []InvoiceLine `json:"lines,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// InvoiceLine is one requested position on a quote. QuantityReady counts
// units already delivered. Optional lines only participate in fulfillment
// when checked.
type InvoiceLine struct {
	ID              int64    `json:"id"`
	QuoteID         int64    `json:"quote_id"`
	ArticleID       int64    `json:"article_id"`
	Type            LineType `json:"type"`
	Quantity        float64  `json:"quantity"`
	QuantityReady   float64  `json:"quantity_ready"`
	Optional        bool     `json:"optional"`
	OptionalChecked bool     `json:"optional_checked"`
	LineOrder       int      `json:"line_order"`
}

// Requires reports whether the line contributes demand for its article.
func (l InvoiceLine) Requires() bool {
	if l.Type != LineTypeProduct {
		return false
	}
	if l.Optional && !l.OptionalChecked {
		return false
	}
	return l.Quantity > 0
}

// SupplierQuote is a purchase order sent to a supplier, referencing the
// originating sales quote.
type SupplierQuote struct {
	ID            int64               `json:"id"`
	Number        string              `json:"number"`
	SupplierID    int64               `json:"supplier_id"`
	OriginQuoteID int64               `json:"origin_quote_id"`
	Status        SupplierQuoteStatus `json:"status"`
	Lines         []SupplierQuoteLine `json:"lines,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// SupplierQuoteLine is one ordered position on a supplier quote.
type SupplierQuoteLine struct {
	ID              int64   `json:"id"`
	SupplierQuoteID int64   `json:"supplier_quote_id"`
	ArticleID       int64   `json:"article_id"`
	Reference       string  `json:"reference"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Unit            string  `json:"unit"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TaxRate         float64 `json:"tax_rate"`
	Discount        float64 `json:"discount"`
}

var (
	// ErrQuoteNotFound indicates a missing quote row.
	ErrQuoteNotFound = errors.New("quotes: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("quotes: invalid input")
)
