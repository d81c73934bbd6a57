package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for stock items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by Service.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, id int64) (Item, error)
	UpdateItemQuantity(ctx context.Context, id int64, quantity float64) error
	SetItemReservation(ctx context.Context, id int64, state ItemState, quoteID int64) error
	InsertItem(ctx context.Context, item Item) (int64, error)
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

const itemColumns = `id, article_id, quantity, state, COALESCE(quote_id,0), COALESCE(lot,''), created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.ArticleID, &item.Quantity, &item.State, &item.QuoteID, &item.Lot, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// GetItem fetches one stock item.
func (r *Repository) GetItem(ctx context.Context, id int64) (Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1`, id))
}

// ListEligibleByArticles returns generic supply lots for the given articles,
// in insertion order. Eligible means state=stock, quantity>0 and no quote
// reservation.
func (r *Repository) ListEligibleByArticles(ctx context.Context, articleIDs []int64) ([]Item, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM stock_items
WHERE article_id = ANY($1) AND state = 'stock' AND quantity > 0 AND quote_id IS NULL
ORDER BY id`, articleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListReservedByArticles returns lots already reserved for the given articles,
// regardless of which quote holds the reservation.
func (r *Repository) ListReservedByArticles(ctx context.Context, articleIDs []int64) ([]Item, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM stock_items
WHERE article_id = ANY($1) AND state = 'reserved'
ORDER BY id`, articleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.ArticleID, &item.Quantity, &item.State, &item.QuoteID, &item.Lot, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (t *txRepo) GetItemForUpdate(ctx context.Context, id int64) (Item, error) {
	return scanItem(t.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1 FOR UPDATE`, id))
}

func (t *txRepo) UpdateItemQuantity(ctx context.Context, id int64, quantity float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE stock_items SET quantity=$1, updated_at=NOW() WHERE id=$2`, quantity, id)
	return err
}

func (t *txRepo) SetItemReservation(ctx context.Context, id int64, state ItemState, quoteID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE stock_items SET state=$1, quote_id=$2, updated_at=NOW() WHERE id=$3`, state, nullInt(quoteID), id)
	return err
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO stock_items (article_id, quantity, state, quote_id, lot, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING id`, item.ArticleID, item.Quantity, item.State, nullInt(item.QuoteID), item.Lot).Scan(&id)
	return id, err
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
