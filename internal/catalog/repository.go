package catalog

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads for catalog data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListArticlesByIDs returns articles for the given ids with their supplier
// associations attached. Unknown ids are skipped.
func (r *Repository) ListArticlesByIDs(ctx context.Context, ids []int64) ([]Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, sku, name, COALESCE(description,''), unit, type, tax_rate, created_at, updated_at
FROM articles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byID := make(map[int64]*Article)
	var order []int64
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.SKU, &a.Name, &a.Description, &a.Unit, &a.Type, &a.TaxRate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		byID[a.ID] = &a
		order = append(order, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := r.pool.Query(ctx, `SELECT article_id, supplier_id, COALESCE(reference,''), COALESCE(unit_price,0), unit_price IS NOT NULL, favorite, COALESCE(lead_time_days,0)
FROM article_suppliers WHERE article_id = ANY($1) ORDER BY article_id, position`, ids)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var articleID int64
		var link ArticleSupplier
		if err := linkRows.Scan(&articleID, &link.SupplierID, &link.Reference, &link.UnitPrice, &link.HasPrice, &link.Favorite, &link.LeadTimeDays); err != nil {
			return nil, err
		}
		if a, ok := byID[articleID]; ok {
			a.Suppliers = append(a.Suppliers, link)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	articles := make([]Article, 0, len(order))
	for _, id := range order {
		articles = append(articles, *byID[id])
	}
	return articles, nil
}

// ListSuppliersByIDs returns suppliers for the given ids. Unknown ids are skipped.
func (r *Repository) ListSuppliersByIDs(ctx context.Context, ids []int64) ([]Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, COALESCE(address,''), COALESCE(email,''), COALESCE(phone,''), created_at, updated_at
FROM suppliers WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Address, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}
