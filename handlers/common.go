package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cafe-api/models"
	"cafe-api/pricing"
	"cafe-api/validation"
)

// MenuItemView is a menu item plus its derived discount fields.
type MenuItemView struct {
	models.MenuItem
	DiscountPrice   float64 `json:"discount_price"`
	DiscountPercent int     `json:"discount_percent"`
	HasDiscount     bool    `json:"has_discount"`
}

func menuItemView(item models.MenuItem, today time.Time) MenuItemView {
	return MenuItemView{
		MenuItem:        item,
		DiscountPrice:   pricing.DiscountPrice(item.Price, item.Promos, today),
		DiscountPercent: pricing.DiscountPercent(item.Promos, today),
		HasDiscount:     pricing.HasDiscount(item.Promos, today),
	}
}

func menuItemViews(items []models.MenuItem, today time.Time) []MenuItemView {
	views := make([]MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, menuItemView(item, today))
	}
	return views
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"phone":      user.Phone,
		"role":       user.Role,
	}
}

// validationFailed writes the field-scoped error map. Always recoverable
// by resubmission.
func validationFailed(c *gin.Context, errs validation.FieldErrors) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

// storeFailed logs an unexpected store error and surfaces it instead of
// degrading into an empty result.
func storeFailed(c *gin.Context, action string, err error) {
	slog.Error("store operation failed", "action", action, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please try again later"})
}
