package fulfillment

// planRequest asks for a fulfillment plan over a quote set. Overrides force
// specific furnish quantities and survive recomputation.
type planRequest struct {
	QuoteIDs  []int64          `json:"quote_ids" validate:"required,min=1,dive,gt=0"`
	Overrides []furnishPayload `json:"overrides" validate:"omitempty,dive"`
}

// applyRequest persists the plan for a quote set.
type applyRequest struct {
	QuoteIDs  []int64          `json:"quote_ids" validate:"required,min=1,dive,gt=0"`
	Overrides []furnishPayload `json:"overrides" validate:"omitempty,dive"`
	ActorID   int64            `json:"actor_id" validate:"omitempty,gt=0"`
}

// furnishPayload is the wire shape of an override furnish.
type furnishPayload struct {
	Ref        string  `json:"ref" validate:"required"`
	ArticleID  int64   `json:"article_id" validate:"required,gt=0"`
	SupplierID int64   `json:"supplier_id" validate:"omitempty,gt=0"`
	StockID    int64   `json:"stock_id" validate:"omitempty,gt=0"`
	Quantity   float64 `json:"quantity" validate:"gte=0"`
}

func (p furnishPayload) toFurnish() Furnish {
	return Furnish{
		Ref:        p.Ref,
		ArticleID:  p.ArticleID,
		SupplierID: p.SupplierID,
		StockID:    p.StockID,
		Quantity:   p.Quantity,
	}
}

func toFurnishes(payloads []furnishPayload) []Furnish {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]Furnish, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.toFurnish())
	}
	return out
}
