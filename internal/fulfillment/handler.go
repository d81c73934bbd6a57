package fulfillment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelier-erp/atelier-erp/internal/platform/httpx"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
)

// Handler exposes the fulfillment planning endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers fulfillment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/plan", h.computePlan)
	r.Post("/apply", h.applyPlan)
}

func (h *Handler) computePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.ComputePlan(r.Context(), PlanInput{
		QuoteIDs:  req.QuoteIDs,
		Overrides: toFurnishes(req.Overrides),
	})
	if err != nil {
		h.respondError(w, "compute plan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) applyPlan(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	outcome, err := h.service.ApplyPlan(r.Context(), ApplyInput{
		QuoteIDs:  req.QuoteIDs,
		Overrides: toFurnishes(req.Overrides),
		ActorID:   req.ActorID,
	})
	if err != nil {
		h.respondError(w, "apply plan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoQuotes), errors.Is(err, quotes.ErrQuoteNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, quotes.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
