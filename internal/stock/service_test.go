package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	items  map[int64]Item
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(items ...Item) *memoryRepo {
	repo := &memoryRepo{items: make(map[int64]Item)}
	for _, item := range items {
		repo.items[item.ID] = item
		if item.ID > repo.nextID {
			repo.nextID = item.ID
		}
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetItem(ctx context.Context, id int64) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (t *memoryTx) GetItemForUpdate(ctx context.Context, id int64) (Item, error) {
	return t.repo.GetItem(ctx, id)
}

func (t *memoryTx) UpdateItemQuantity(ctx context.Context, id int64, quantity float64) error {
	item := t.repo.items[id]
	item.Quantity = quantity
	t.repo.items[id] = item
	return nil
}

func (t *memoryTx) SetItemReservation(ctx context.Context, id int64, state ItemState, quoteID int64) error {
	item := t.repo.items[id]
	item.State = state
	item.QuoteID = quoteID
	t.repo.items[id] = item
	return nil
}

func (t *memoryTx) InsertItem(ctx context.Context, item Item) (int64, error) {
	t.repo.nextID++
	item.ID = t.repo.nextID
	t.repo.items[item.ID] = item
	return item.ID, nil
}

func TestReserveWholeLot(t *testing.T) {
	repo := newMemoryRepo(Item{ID: 1, ArticleID: 7, Quantity: 4, State: ItemStateStock})
	svc := NewService(repo, nil, nil)

	reserved, err := svc.Reserve(context.Background(), ReserveInput{StockID: 1, QuoteID: 99, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, int64(1), reserved.ID)
	require.Equal(t, ItemStateReserved, reserved.State)
	require.Equal(t, int64(99), reserved.QuoteID)

	stored := repo.items[1]
	require.Equal(t, ItemStateReserved, stored.State)
	require.InDelta(t, 4.0, stored.Quantity, 0.0001)
}

func TestReservePartialSplitsLot(t *testing.T) {
	repo := newMemoryRepo(Item{ID: 1, ArticleID: 7, Quantity: 10, State: ItemStateStock, Lot: "L-42"})
	svc := NewService(repo, nil, nil)

	reserved, err := svc.Reserve(context.Background(), ReserveInput{StockID: 1, QuoteID: 99, Quantity: 3})
	require.NoError(t, err)
	require.NotEqual(t, int64(1), reserved.ID)
	require.InDelta(t, 3.0, reserved.Quantity, 0.0001)
	require.Equal(t, "L-42", reserved.Lot)
	require.Equal(t, int64(99), reserved.QuoteID)

	source := repo.items[1]
	require.InDelta(t, 7.0, source.Quantity, 0.0001)
	require.Equal(t, ItemStateStock, source.State)
}

func TestReserveRejectsUnavailable(t *testing.T) {
	repo := newMemoryRepo(
		Item{ID: 1, ArticleID: 7, Quantity: 5, State: ItemStateReserved, QuoteID: 12},
		Item{ID: 2, ArticleID: 7, Quantity: 5, State: ItemStateStock},
	)
	svc := NewService(repo, nil, nil)

	_, err := svc.Reserve(context.Background(), ReserveInput{StockID: 1, QuoteID: 99, Quantity: 1})
	require.ErrorIs(t, err, ErrNotAvailable)

	_, err = svc.Reserve(context.Background(), ReserveInput{StockID: 2, QuoteID: 99, Quantity: 8})
	require.ErrorIs(t, err, ErrInsufficientQuantity)

	_, err = svc.Reserve(context.Background(), ReserveInput{StockID: 2, QuoteID: 99, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}
