package fulfillment

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// Furnish is one allocation unit assigning a quantity of an article from a
// single supply source, either a supplier (SupplierID set) or a stock lot
// (StockID set). Ref is unique per (article, source) within one run.
type Furnish struct {
	Ref            string  `json:"ref"`
	ArticleID      int64   `json:"article_id"`
	SupplierID     int64   `json:"supplier_id,omitempty"`
	StockID        int64   `json:"stock_id,omitempty"`
	Quantity       float64 `json:"quantity"`
	// MaxAvailable caps stock furnishes at the lot quantity. Zero means the
	// source itself is unbounded and only remaining demand caps it.
	MaxAvailable   float64 `json:"max_available,omitempty"`
	TotalToFurnish float64 `json:"total_to_furnish"`
}

// SupplierRef builds the furnish reference for an (article, supplier) pair.
func SupplierRef(articleID, supplierID int64) string {
	return fmt.Sprintf("%d@supplier@%d", articleID, supplierID)
}

// StockRef builds the furnish reference for an (article, stock lot) pair.
func StockRef(articleID, stockID int64) string {
	return fmt.Sprintf("%d@stock@%d", articleID, stockID)
}

// Demand captures the three quantities the engine tracks per article.
type Demand struct {
	TotalToFurnish   float64
	AlreadyFurnished float64
	// Remaining may be negative when over-allocated; consumers must treat
	// negative values as zero demand, never as negative capacity.
	Remaining float64
}

// ArticleSummary reports fulfillment progress for one article in scope.
type ArticleSummary struct {
	ArticleID                int64   `json:"id"`
	RemainingQuantity        float64 `json:"remaining_quantity"`
	TotalToFurnish           float64 `json:"total_to_furnish"`
	AlreadyFurnishedQuantity float64 `json:"already_furnished_quantity"`
}

// ActionType enumerates compiled action kinds.
type ActionType string

const (
	// ActionWithdrawStock pulls a quantity from one stock lot for a quote.
	ActionWithdrawStock ActionType = "withdraw-stock"
	// ActionOrderItems orders line items from one supplier for a quote.
	ActionOrderItems ActionType = "order-items"
)

// Action is the compiled, persistable outcome of allocation.
type Action struct {
	Type     ActionType       `json:"type"`
	Withdraw *StockWithdrawal `json:"withdraw,omitempty"`
	Order    *SupplierOrder   `json:"order,omitempty"`
}

// StockWithdrawal describes pulling Quantity units of one lot for a quote.
type StockWithdrawal struct {
	QuoteID  int64      `json:"quote_id"`
	Item     stock.Item `json:"item"`
	Quantity float64    `json:"quantity"`
}

// SupplierOrder describes one purchase order to send to a supplier.
type SupplierOrder struct {
	SupplierID   int64       `json:"supplier_id"`
	SupplierName string      `json:"supplier_name,omitempty"`
	QuoteID      int64       `json:"quote_id"`
	Lines        []OrderLine `json:"lines"`
}

// OrderLine is one purchase-order position, money in decimals.
type OrderLine struct {
	ArticleID   int64           `json:"article_id"`
	Reference   string          `json:"reference,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    float64         `json:"quantity"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Result is the externally consumable allocation plan.
type Result struct {
	PlanID    uuid.UUID        `json:"plan_id"`
	Actions   []Action         `json:"actions"`
	Furnishes []Furnish        `json:"furnishes"`
	Articles  []ArticleSummary `json:"articles"`
}

// PlanID derives a stable identifier for a plan over a quote set; the same
// quote set always maps to the same id so audit entries and cached plans can
// be correlated across recomputations.
func PlanID(quoteIDs []int64) uuid.UUID {
	sorted := make([]int64, len(quoteIDs))
	copy(sorted, quoteIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	tokens := make([]string, 0, len(sorted))
	for _, id := range sorted {
		tokens = append(tokens, strconv.FormatInt(id, 10))
	}
	return uuid.NewSHA1(uuid.Nil, []byte("PLAN:"+strings.Join(tokens, ",")))
}

var (
	// ErrNoQuotes indicates the input quote set resolved to nothing.
	ErrNoQuotes = errors.New("fulfillment: no quotes in scope")
	// ErrInvalidInput indicates malformed input the caller should have rejected.
	ErrInvalidInput = errors.New("fulfillment: invalid input")
)
