package quotes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	quotes map[int64]Quote
	sqs    []SupplierQuote
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(quotes ...Quote) *memoryRepo {
	repo := &memoryRepo{quotes: make(map[int64]Quote)}
	for _, q := range quotes {
		repo.quotes[q.ID] = q
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (t *memoryTx) CreateSupplierQuote(ctx context.Context, sq SupplierQuote) (int64, error) {
	t.repo.nextID++
	sq.ID = t.repo.nextID
	t.repo.sqs = append(t.repo.sqs, sq)
	return sq.ID, nil
}

func (t *memoryTx) InsertSupplierQuoteLine(ctx context.Context, line SupplierQuoteLine) error {
	for i := range t.repo.sqs {
		if t.repo.sqs[i].ID == line.SupplierQuoteID {
			t.repo.sqs[i].Lines = append(t.repo.sqs[i].Lines, line)
		}
	}
	return nil
}

func TestCreateSupplierQuote(t *testing.T) {
	repo := newMemoryRepo(Quote{ID: 5, Number: "Q-5", Status: QuoteStatusAccepted})
	svc := NewService(repo, nil, nil)

	sq, err := svc.CreateSupplierQuote(context.Background(), CreateSupplierQuoteInput{
		OriginQuoteID: 5,
		SupplierID:    3,
		Lines: []SupplierQuoteLineInput{
			{ArticleID: 7, Name: "Widget", Unit: "pcs", Quantity: 6, UnitPrice: 5},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, sq.ID)
	require.NotEmpty(t, sq.Number)
	require.Equal(t, SupplierQuoteStatusDraft, sq.Status)
	require.Len(t, sq.Lines, 1)
	require.InDelta(t, 6.0, sq.Lines[0].Quantity, 0.0001)
}

func TestCreateSupplierQuoteValidation(t *testing.T) {
	repo := newMemoryRepo(Quote{ID: 5})
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateSupplierQuote(context.Background(), CreateSupplierQuoteInput{OriginQuoteID: 5, SupplierID: 3})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSupplierQuote(context.Background(), CreateSupplierQuoteInput{
		OriginQuoteID: 404,
		SupplierID:    3,
		Lines:         []SupplierQuoteLineInput{{ArticleID: 7, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrQuoteNotFound)

	_, err = svc.CreateSupplierQuote(context.Background(), CreateSupplierQuoteInput{
		OriginQuoteID: 5,
		SupplierID:    3,
		Lines:         []SupplierQuoteLineInput{{ArticleID: 7, Quantity: -2}},
	})
	require.ErrorIs(t, err, ErrValidation)
}
