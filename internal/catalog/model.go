package catalog

import "time"

// ArticleType enumerates sellable article kinds.
type ArticleType string

const (
	// ArticleTypeProduct is a physical, stockable article.
	ArticleTypeProduct ArticleType = "product"
	// ArticleTypeConsumable is physical but not lot-tracked.
	ArticleTypeConsumable ArticleType = "consumable"
	// ArticleTypeService carries no physical quantity and never enters allocation.
	ArticleTypeService ArticleType = "service"
)

// Article is a sellable/purchasable item.
type Article struct {
	ID          int64             `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Unit        string            `json:"unit"`
	Type        ArticleType       `json:"type"`
	TaxRate     float64           `json:"tax_rate"`
	Suppliers   []ArticleSupplier `json:"suppliers,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ArticleSupplier links an article to a supplier with purchasing details.
// The slice order on Article.Suppliers is the association order, not the
// allocation order.
type ArticleSupplier struct {
	SupplierID   int64   `json:"supplier_id"`
	Reference    string  `json:"reference"`
	UnitPrice    float64 `json:"unit_price"`
	HasPrice     bool    `json:"has_price"`
	Favorite     bool    `json:"favorite"`
	LeadTimeDays int     `json:"lead_time_days"`
}

// Supplier represents a supplier entity.
type Supplier struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPhysical reports whether the article carries stockable quantity.
func (a Article) IsPhysical() bool {
	return a.Type != ArticleTypeService
}
