package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/shared"
	"github.com/atelier-erp/atelier-erp/internal/stock"
)

// QuoteStore loads sales quotes and the supplier orders already sent for them.
type QuoteStore interface {
	ListByIDs(ctx context.Context, ids []int64) ([]quotes.Quote, error)
	ListSupplierQuotesByOrigin(ctx context.Context, originQuoteIDs []int64) ([]quotes.SupplierQuote, error)
}

// ArticleStore loads article and supplier reference data.
type ArticleStore interface {
	ListArticlesByIDs(ctx context.Context, ids []int64) ([]catalog.Article, error)
	ListSuppliersByIDs(ctx context.Context, ids []int64) ([]catalog.Supplier, error)
}

// StockStore loads the stock snapshot the allocator works on.
type StockStore interface {
	ListEligibleByArticles(ctx context.Context, articleIDs []int64) ([]stock.Item, error)
	ListReservedByArticles(ctx context.Context, articleIDs []int64) ([]stock.Item, error)
}

// Reserver persists stock withdrawals.
type Reserver interface {
	Reserve(ctx context.Context, input stock.ReserveInput) (stock.Item, error)
}

// Purchaser persists supplier orders.
type Purchaser interface {
	CreateSupplierQuote(ctx context.Context, input quotes.CreateSupplierQuoteInput) (quotes.SupplierQuote, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Refresher schedules asynchronous plan re-priming after an apply.
type Refresher interface {
	EnqueuePlanRefresh(ctx context.Context, quoteID int64) error
}

// Service computes fulfillment plans and applies them.
type Service struct {
	quoteStore    QuoteStore
	articleStore  ArticleStore
	stockStore    StockStore
	reserver      Reserver
	purchaser     Purchaser
	audit         AuditPort
	refresher     Refresher
	cache         *PlanCache
	logger        *slog.Logger
	maxIterations int
}

// ServiceParams bundles Service dependencies.
type ServiceParams struct {
	QuoteStore   QuoteStore
	ArticleStore ArticleStore
	StockStore   StockStore
	Reserver     Reserver
	Purchaser    Purchaser
	Audit        AuditPort
	Refresher    Refresher
	Cache        *PlanCache
	Logger       *slog.Logger
	// MaxIterations bounds the allocation loop, zero means default.
	MaxIterations int
}

// NewService builds the fulfillment service.
func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		quoteStore:    p.QuoteStore,
		articleStore:  p.ArticleStore,
		stockStore:    p.StockStore,
		reserver:      p.Reserver,
		purchaser:     p.Purchaser,
		audit:         p.Audit,
		refresher:     p.Refresher,
		cache:         p.Cache,
		logger:        logger,
		maxIterations: p.MaxIterations,
	}
}

// PlanInput identifies the quote set to plan for, plus optional overrides.
type PlanInput struct {
	QuoteIDs  []int64
	Overrides []Furnish
}

// ComputePlan fetches the read-side snapshot, runs the allocation engine and
// compiles the result. The engine performs no writes; only ApplyPlan does.
// Runs without overrides are served from the plan cache when one is wired.
func (s *Service) ComputePlan(ctx context.Context, input PlanInput) (Result, error) {
	if len(input.QuoteIDs) == 0 {
		return Result{}, ErrNoQuotes
	}
	if len(input.Overrides) > 0 || s.cache == nil {
		return s.computePlan(ctx, input)
	}
	key, err := s.cache.PlanKey(ctx, input.QuoteIDs)
	if err != nil {
		return Result{}, err
	}
	return s.cache.FetchPlan(ctx, key, func(ctx context.Context) (Result, error) {
		return s.computePlan(ctx, input)
	})
}

func (s *Service) computePlan(ctx context.Context, input PlanInput) (Result, error) {
	snapshot, err := s.loadSnapshot(ctx, input.QuoteIDs)
	if err != nil {
		return Result{}, err
	}
	if len(snapshot.Quotes) == 0 {
		return Result{}, ErrNoQuotes
	}

	lines := collectLines(snapshot.Quotes)
	demands := computeDemands(snapshot, lines, nil)

	plan := NewPlan(BuildSources(snapshot.Articles, demands, snapshot.EligibleStock))
	if dangling := plan.ApplyOverrides(input.Overrides); len(dangling) > 0 {
		s.logger.Warn("dropping dangling overrides", "refs", dangling)
	}
	plan.RefreshTotals(demands)

	Allocate(plan, AllocateInput{
		Articles:           snapshot.Articles,
		Lines:              lines,
		SentSupplierQuotes: snapshot.SentSupplierQuotes,
		EligibleStock:      snapshot.EligibleStock,
		ReservedStock:      snapshot.ReservedStock,
		MaxIterations:      s.maxIterations,
	})

	furnishes := plan.Furnishes()
	finalDemands := computeDemands(snapshot, lines, furnishes)

	result := Compile(CompileInput{
		Furnishes: furnishes,
		Demands:   finalDemands,
		Articles:  snapshot.Articles,
		Suppliers: snapshot.Suppliers,
		Quotes:    snapshot.Quotes,
		Stock:     snapshot.EligibleStock,
	})
	result.PlanID = PlanID(input.QuoteIDs)
	return result, nil
}

// ApplyInput identifies the plan to persist. Overrides are re-merged so the
// applied plan reflects the user's final review state.
type ApplyInput struct {
	QuoteIDs  []int64
	Overrides []Furnish
	ActorID   int64
}

// ApplyOutcome reports what ApplyPlan persisted.
type ApplyOutcome struct {
	Result       Result `json:"result"`
	Withdrawals  int    `json:"withdrawals"`
	OrdersPlaced int    `json:"orders_placed"`
	Skipped      int    `json:"skipped"`
}

// ApplyPlan recomputes the plan with the caller's overrides and persists its
// actions: reservations for stock withdrawals and draft supplier quotes for
// orders. Each action carries its own idempotency key, so a replay after a
// partial failure converges instead of duplicating side effects.
func (s *Service) ApplyPlan(ctx context.Context, input ApplyInput) (ApplyOutcome, error) {
	result, err := s.computePlan(ctx, PlanInput{QuoteIDs: input.QuoteIDs, Overrides: input.Overrides})
	if err != nil {
		return ApplyOutcome{}, err
	}

	outcome := ApplyOutcome{Result: result}
	for _, action := range result.Actions {
		switch action.Type {
		case ActionWithdrawStock:
			w := action.Withdraw
			_, err := s.reserver.Reserve(ctx, stock.ReserveInput{
				StockID:  w.Item.ID,
				QuoteID:  w.QuoteID,
				Quantity: w.Quantity,
				ActorID:  input.ActorID,
			})
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				outcome.Skipped++
				continue
			}
			if err != nil {
				return outcome, err
			}
			outcome.Withdrawals++

		case ActionOrderItems:
			order := action.Order
			_, err := s.purchaser.CreateSupplierQuote(ctx, quotes.CreateSupplierQuoteInput{
				OriginQuoteID: order.QuoteID,
				SupplierID:    order.SupplierID,
				ActorID:       input.ActorID,
				Lines:         orderLines(order.Lines),
			})
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				outcome.Skipped++
				continue
			}
			if err != nil {
				return outcome, err
			}
			outcome.OrdersPlaced++
		}
	}

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("plan cache bump failed", "error", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "PLAN_APPLY",
			Entity:   "fulfillment_plan",
			EntityID: result.PlanID.String(),
			Meta: map[string]any{
				"quote_ids":   input.QuoteIDs,
				"withdrawals": outcome.Withdrawals,
				"orders":      outcome.OrdersPlaced,
				"skipped":     outcome.Skipped,
			},
		})
	}
	if s.refresher != nil {
		for _, quoteID := range input.QuoteIDs {
			if err := s.refresher.EnqueuePlanRefresh(ctx, quoteID); err != nil {
				s.logger.Warn("plan refresh enqueue failed", "quote_id", quoteID, "error", err)
			}
		}
	}
	return outcome, nil
}

type snapshot struct {
	Quotes             []quotes.Quote
	Articles           []catalog.Article
	Suppliers          []catalog.Supplier
	SentSupplierQuotes []quotes.SupplierQuote
	EligibleStock      []stock.Item
	ReservedStock      []stock.Item
}

// loadSnapshot fetches the full read-side state: quotes first to learn the
// article scope, then the four dependent reads in parallel.
func (s *Service) loadSnapshot(ctx context.Context, quoteIDs []int64) (snapshot, error) {
	var snap snapshot

	qs, err := s.quoteStore.ListByIDs(ctx, quoteIDs)
	if err != nil {
		return snapshot{}, err
	}
	snap.Quotes = qs

	articleIDs := collectArticleIDs(qs)
	if len(articleIDs) == 0 {
		return snap, nil
	}
	articles, err := s.articleStore.ListArticlesByIDs(ctx, articleIDs)
	if err != nil {
		return snapshot{}, err
	}
	snap.Articles = articles

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.stockStore.ListEligibleByArticles(gctx, articleIDs)
		snap.EligibleStock = items
		return err
	})
	g.Go(func() error {
		items, err := s.stockStore.ListReservedByArticles(gctx, articleIDs)
		snap.ReservedStock = items
		return err
	})
	g.Go(func() error {
		sqs, err := s.quoteStore.ListSupplierQuotesByOrigin(gctx, quoteIDs)
		snap.SentSupplierQuotes = sqs
		return err
	})
	g.Go(func() error {
		supplierIDs := collectSupplierIDs(articles)
		if len(supplierIDs) == 0 {
			return nil
		}
		suppliers, err := s.articleStore.ListSuppliersByIDs(gctx, supplierIDs)
		snap.Suppliers = suppliers
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func computeDemands(snap snapshot, lines []quotes.InvoiceLine, furnishes []Furnish) map[int64]Demand {
	demands := make(map[int64]Demand, len(snap.Articles))
	for _, article := range snap.Articles {
		demands[article.ID] = ComputeDemand(DemandInput{
			ArticleID:          article.ID,
			Lines:              lines,
			Furnishes:          furnishes,
			SentSupplierQuotes: snap.SentSupplierQuotes,
			ReservedStock:      snap.ReservedStock,
		})
	}
	return demands
}

func collectLines(qs []quotes.Quote) []quotes.InvoiceLine {
	var lines []quotes.InvoiceLine
	for _, q := range qs {
		lines = append(lines, q.Lines...)
	}
	return lines
}

// collectArticleIDs gathers the distinct articles demanded by product lines,
// sorted so downstream bulk queries are deterministic.
func collectArticleIDs(qs []quotes.Quote) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, q := range qs {
		for _, line := range q.Lines {
			if !line.Requires() || seen[line.ArticleID] {
				continue
			}
			seen[line.ArticleID] = true
			ids = append(ids, line.ArticleID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func collectSupplierIDs(articles []catalog.Article) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, article := range articles {
		for _, link := range article.Suppliers {
			if seen[link.SupplierID] {
				continue
			}
			seen[link.SupplierID] = true
			ids = append(ids, link.SupplierID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// orderLines converts compiled purchase-order lines to creation inputs.
func orderLines(lines []OrderLine) []quotes.SupplierQuoteLineInput {
	out := make([]quotes.SupplierQuoteLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, quotes.SupplierQuoteLineInput{
			ArticleID:   line.ArticleID,
			Reference:   line.Reference,
			Name:        line.Name,
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.InexactFloat64(),
			TaxRate:     line.TaxRate.InexactFloat64(),
			Discount:    line.Discount.InexactFloat64(),
		})
	}
	return out
}
