package stock

import (
	"context"
	"fmt"

	"github.com/atelier-erp/atelier-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetItem(ctx context.Context, id int64) (Item, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates stock reservation flows.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem}
}

// ReserveInput describes a reservation request against one stock lot.
type ReserveInput struct {
	StockID  int64
	QuoteID  int64
	Quantity float64
	ActorID  int64
}

// Reserve holds Quantity units of the lot for the quote. A partial
// reservation splits the lot: the source keeps the remainder and a new
// reserved lot is created linked to the quote. Returns the reserved item.
func (s *Service) Reserve(ctx context.Context, input ReserveInput) (Item, error) {
	if input.Quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if input.QuoteID == 0 {
		return Item{}, fmt.Errorf("stock: quote required for reservation")
	}
	key := fmt.Sprintf("RESERVE:%d:%d", input.QuoteID, input.StockID)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "stock.reserve"); err != nil {
			return Item{}, err
		}
		inserted = true
	}
	var reserved Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, input.StockID)
		if err != nil {
			return err
		}
		if !item.Available() {
			return ErrNotAvailable
		}
		if input.Quantity > item.Quantity {
			return ErrInsufficientQuantity
		}
		if input.Quantity == item.Quantity {
			if err := tx.SetItemReservation(ctx, item.ID, ItemStateReserved, input.QuoteID); err != nil {
				return err
			}
			reserved = item
			reserved.State = ItemStateReserved
			reserved.QuoteID = input.QuoteID
			return nil
		}
		// Partial: carve the reserved quantity out of the source lot.
		if err := tx.UpdateItemQuantity(ctx, item.ID, item.Quantity-input.Quantity); err != nil {
			return err
		}
		carved := Item{ArticleID: item.ArticleID, Quantity: input.Quantity, State: ItemStateReserved, QuoteID: input.QuoteID, Lot: item.Lot}
		id, err := tx.InsertItem(ctx, carved)
		if err != nil {
			return err
		}
		carved.ID = id
		reserved = carved
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Item{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "STOCK_RESERVE",
			Entity:   "stock_item",
			EntityID: fmt.Sprintf("%d", reserved.ID),
			Meta:     map[string]any{"quote_id": input.QuoteID, "qty": input.Quantity, "source_id": input.StockID},
		})
	}
	return reserved, nil
}
