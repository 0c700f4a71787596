package checkout

import (
	"github.com/google/uuid"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

// AssignVendor picks the fulfilling vendor for an order: the vendor of the
// first line in the cart. The order record carries a single vendor, so when
// a cart mixes products from several vendors the remaining vendors are not
// represented on the order even though their line items are. An empty cart
// has no vendor and returns nil.
func AssignVendor(items []models.CartItem) *uuid.UUID {
	if len(items) == 0 {
		return nil
	}
	vendorID := items[0].VendorID
	return &vendorID
}
