package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-erp/atelier-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Quote, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates supplier quote creation.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
}

// NewService constructs the quotes service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem}
}

// SupplierQuoteLineInput describes one ordered position.
type SupplierQuoteLineInput struct {
	ArticleID   int64
	Reference   string
	Name        string
	Description string
	Unit        string
	Quantity    float64
	UnitPrice   float64
	TaxRate     float64
	Discount    float64
}

// CreateSupplierQuoteInput describes the draft purchase order to create.
type CreateSupplierQuoteInput struct {
	OriginQuoteID int64
	SupplierID    int64
	Number        string
	ActorID       int64
	Lines         []SupplierQuoteLineInput
}

// CreateSupplierQuote persists a draft supplier order referencing the
// originating sales quote. Creation is idempotent per (origin quote,
// supplier): replays return ErrIdempotencyConflict.
func (s *Service) CreateSupplierQuote(ctx context.Context, input CreateSupplierQuoteInput) (SupplierQuote, error) {
	if input.OriginQuoteID == 0 || input.SupplierID == 0 {
		return SupplierQuote{}, ErrValidation
	}
	if len(input.Lines) == 0 {
		return SupplierQuote{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	if _, err := s.repo.Get(ctx, input.OriginQuoteID); err != nil {
		return SupplierQuote{}, err
	}
	if input.Number == "" {
		input.Number = generateNumber("SQ")
	}
	key := fmt.Sprintf("FURNISH:%d:%d", input.OriginQuoteID, input.SupplierID)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "quotes.supplier_quote"); err != nil {
			return SupplierQuote{}, err
		}
		inserted = true
	}
	sq := SupplierQuote{Number: input.Number, SupplierID: input.SupplierID, OriginQuoteID: input.OriginQuoteID, Status: SupplierQuoteStatusDraft}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateSupplierQuote(ctx, sq)
		if err != nil {
			return err
		}
		sq.ID = id
		for _, line := range input.Lines {
			if line.ArticleID == 0 || line.Quantity <= 0 {
				return ErrValidation
			}
			inserted := SupplierQuoteLine{
				SupplierQuoteID: id,
				ArticleID:       line.ArticleID,
				Reference:       line.Reference,
				Name:            line.Name,
				Description:     line.Description,
				Unit:            line.Unit,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				TaxRate:         line.TaxRate,
				Discount:        line.Discount,
			}
			if err := tx.InsertSupplierQuoteLine(ctx, inserted); err != nil {
				return err
			}
			sq.Lines = append(sq.Lines, inserted)
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return SupplierQuote{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "SUPPLIER_QUOTE_CREATE",
			Entity:   "supplier_quote",
			EntityID: fmt.Sprintf("%d", sq.ID),
			Meta:     map[string]any{"number": sq.Number, "origin_quote": input.OriginQuoteID, "supplier": input.SupplierID},
		})
	}
	return sq, nil
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
