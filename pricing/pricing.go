// Package pricing derives the discounted price of a menu item from its
// promo links. The current date is an explicit parameter everywhere.
package pricing

import (
	"math"
	"time"

	"cafe-api/models"
)

// EffectivePromo returns the first promo link (in persisted order) whose
// promo is active and whose date range contains today, or nil when none
// applies. When several links are effective at once the oldest wins;
// callers must not assume a best-discount selection.
func EffectivePromo(links []models.MenuPromo, today time.Time) *models.MenuPromo {
	for i := range links {
		if links[i].Promo.Effective(today) {
			return &links[i]
		}
	}
	return nil
}

// DiscountPercent returns the discount of the effective promo, or 0.
func DiscountPercent(links []models.MenuPromo, today time.Time) int {
	if link := EffectivePromo(links, today); link != nil {
		return link.DiscountPercent
	}
	return 0
}

// HasDiscount reports whether an effective promo with a non-zero discount
// exists.
func HasDiscount(links []models.MenuPromo, today time.Time) bool {
	return DiscountPercent(links, today) > 0
}

// DiscountPrice applies the effective promo's discount to price, rounded
// to cents. Without an effective promo, or with a zero discount, the
// price is returned unchanged.
func DiscountPrice(price float64, links []models.MenuPromo, today time.Time) float64 {
	percent := DiscountPercent(links, today)
	if percent <= 0 {
		return price
	}
	discounted := price - price*float64(percent)/100
	return math.Round(discounted*100) / 100
}
