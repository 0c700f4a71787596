package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

// Totals is the money breakdown for a cart. All values are integer amounts
// in the smallest currency unit; AdvanceCents plus RemainingCents always
// equals TotalCents.
type Totals struct {
	SubtotalCents    int  `json:"subtotal_cents"`
	DeliveryFeeCents int  `json:"delivery_fee_cents"`
	TotalCents       int  `json:"total_cents"`
	AdvanceCents     int  `json:"advance_cents"`
	RemainingCents   int  `json:"remaining_cents"`
	FreeDelivery     bool `json:"free_delivery"`
}

// ComputeTotals prices a cart. Delivery is free once the subtotal reaches the
// threshold; the advance is the configured percentage of the total, rounded
// down, and the remainder is defined as total minus advance so the two parts
// re-add exactly.
func ComputeTotals(items []models.CartItem, cfg config.CheckoutConfig) Totals {
	subtotal := 0
	for _, item := range items {
		subtotal += item.UnitPriceCents * item.Quantity
	}

	fee := 0
	free := subtotal >= cfg.DeliveryThreshold
	if !free {
		fee = cfg.DeliveryFee
	}

	total := subtotal + fee
	advance := advanceOf(total, cfg.AdvancePercent)

	return Totals{
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
		TotalCents:       total,
		AdvanceCents:     advance,
		RemainingCents:   total - advance,
		FreeDelivery:     free,
	}
}

func advanceOf(totalCents, percent int) int {
	return int(decimal.NewFromInt(int64(totalCents)).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart())
}
