package quotes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for quotes and
// supplier quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by Service.
type TxRepository interface {
	CreateSupplierQuote(ctx context.Context, sq SupplierQuote) (int64, error)
	InsertSupplierQuoteLine(ctx context.Context, line SupplierQuoteLine) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// ListByIDs returns quotes with lines for the given ids, in id order.
// Unknown ids are skipped.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]Quote, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, number, COALESCE(customer_id,0), status, created_at, updated_at
FROM quotes WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Quote
	byID := make(map[int64]int)
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.Number, &q.CustomerID, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		byID[q.ID] = len(result)
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := r.pool.Query(ctx, `SELECT id, quote_id, COALESCE(article_id,0), type, quantity, quantity_ready, optional, optional_checked, line_order
FROM quote_lines WHERE quote_id = ANY($1) ORDER BY quote_id, line_order, id`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var line InvoiceLine
		if err := lineRows.Scan(&line.ID, &line.QuoteID, &line.ArticleID, &line.Type, &line.Quantity, &line.QuantityReady, &line.Optional, &line.OptionalChecked, &line.LineOrder); err != nil {
			return nil, err
		}
		if idx, ok := byID[line.QuoteID]; ok {
			result[idx].Lines = append(result[idx].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a single quote with lines.
func (r *Repository) Get(ctx context.Context, id int64) (Quote, error) {
	list, err := r.ListByIDs(ctx, []int64{id})
	if err != nil {
		return Quote{}, err
	}
	if len(list) == 0 {
		return Quote{}, ErrQuoteNotFound
	}
	return list[0], nil
}

// ListSupplierQuotesByOrigin returns non-draft supplier quotes referencing
// the given originating sales quotes, with lines. Draft documents have not
// left the building and do not reduce demand.
func (r *Repository) ListSupplierQuotesByOrigin(ctx context.Context, originQuoteIDs []int64) ([]SupplierQuote, error) {
	if len(originQuoteIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, number, supplier_id, origin_quote_id, status, created_at, updated_at
FROM supplier_quotes WHERE origin_quote_id = ANY($1) AND status <> 'draft' ORDER BY id`, originQuoteIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []SupplierQuote
	byID := make(map[int64]int)
	var sqIDs []int64
	for rows.Next() {
		var sq SupplierQuote
		if err := rows.Scan(&sq.ID, &sq.Number, &sq.SupplierID, &sq.OriginQuoteID, &sq.Status, &sq.CreatedAt, &sq.UpdatedAt); err != nil {
			return nil, err
		}
		byID[sq.ID] = len(result)
		result = append(result, sq)
		sqIDs = append(sqIDs, sq.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sqIDs) == 0 {
		return result, nil
	}

	lineRows, err := r.pool.Query(ctx, `SELECT id, supplier_quote_id, article_id, COALESCE(reference,''), COALESCE(name,''), COALESCE(description,''), COALESCE(unit,''), quantity, unit_price, tax_rate, discount
FROM supplier_quote_lines WHERE supplier_quote_id = ANY($1) ORDER BY supplier_quote_id, id`, sqIDs)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var line SupplierQuoteLine
		if err := lineRows.Scan(&line.ID, &line.SupplierQuoteID, &line.ArticleID, &line.Reference, &line.Name, &line.Description, &line.Unit, &line.Quantity, &line.UnitPrice, &line.TaxRate, &line.Discount); err != nil {
			return nil, err
		}
		if idx, ok := byID[line.SupplierQuoteID]; ok {
			result[idx].Lines = append(result[idx].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (t *txRepo) CreateSupplierQuote(ctx context.Context, sq SupplierQuote) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO supplier_quotes (number, supplier_id, origin_quote_id, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id`, sq.Number, sq.SupplierID, sq.OriginQuoteID, sq.Status).Scan(&id)
	return id, err
}

func (t *txRepo) InsertSupplierQuoteLine(ctx context.Context, line SupplierQuoteLine) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO supplier_quote_lines (supplier_quote_id, article_id, reference, name, description, unit, quantity, unit_price, tax_rate, discount)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		line.SupplierQuoteID, line.ArticleID, line.Reference, line.Name, line.Description, line.Unit, line.Quantity, line.UnitPrice, line.TaxRate, line.Discount)
	return err
}
