package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/validation"
)

// ListMenu returns menu items with their derived discount prices.
// The public sees active items only; staff see everything. Supports
// ?type= category and ?popular=true filters.
func ListMenu(c *gin.Context) {
	query := config.DB.Preload("Promos", func(db *gorm.DB) *gorm.DB {
		return db.Order("menu_promos.id")
	}).Preload("Promos.Promo")

	if itemType := c.Query("type"); itemType != "" {
		if !models.ValidCategory(itemType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category. Must be: coffee, tea, desserts or breakfast"})
			return
		}
		query = query.Where("category = ?", itemType)
	}
	if c.Query("popular") == "true" {
		query = query.Where("is_popular = ?", true)
	}
	if !middleware.IsStaff(c) {
		query = query.Where("is_active = ?", true)
	}

	var items []models.MenuItem
	if err := query.Order("sort_order, name").Find(&items).Error; err != nil {
		storeFailed(c, "menu: list", err)
		return
	}

	views := menuItemViews(items, time.Now())
	c.JSON(http.StatusOK, gin.H{"count": len(views), "items": views})
}

// GetMenuItem returns a single menu item. Inactive items are hidden from
// the public.
func GetMenuItem(c *gin.Context) {
	var item models.MenuItem
	err := config.DB.Preload("Promos", func(db *gorm.DB) *gorm.DB {
		return db.Order("menu_promos.id")
	}).Preload("Promos.Promo").First(&item, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if !item.IsActive && !middleware.IsStaff(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": menuItemView(item, time.Now())})
}

type CreateMenuItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Image       string   `json:"image"`
	IsActive    *bool    `json:"is_active"`
	IsPopular   bool     `json:"is_popular"`
	SortOrder   int      `json:"sort_order"`
}

// CreateMenuItem adds a menu item (staff only)
func CreateMenuItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}
	if !models.ValidCategory(req.Category) {
		errs.Add("category", "category must be one of: coffee, tea, desserts, breakfast")
	}
	if *req.Price < 0 {
		errs.Add("price", "price must not be negative")
	}
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	item := models.MenuItem{
		Name:        req.Name,
		Category:    models.MenuCategory(req.Category),
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		IsActive:    true,
		IsPopular:   req.IsPopular,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := config.DB.Create(&item).Error; err != nil {
		storeFailed(c, "menu: create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created", "item": menuItemView(item, time.Now())})
}

// UpdateMenuItem applies a partial update to a menu item (staff only)
func UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}
	if raw, ok := req["category"]; ok {
		category, _ := raw.(string)
		if !models.ValidCategory(category) {
			errs.Add("category", "category must be one of: coffee, tea, desserts, breakfast")
		}
	}
	if raw, ok := req["price"]; ok {
		price, isNumber := raw.(float64)
		if !isNumber || price < 0 {
			errs.Add("price", "price must be a non-negative number")
		}
	}
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	// Only allow safe fields
	allowed := map[string]bool{
		"name": true, "category": true, "description": true, "price": true,
		"image": true, "is_active": true, "is_popular": true, "sort_order": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	if err := config.DB.Model(&item).Updates(update).Error; err != nil {
		storeFailed(c, "menu: update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": menuItemView(item, time.Now())})
}

// DeleteMenuItem removes a menu item and its promo links (staff only)
func DeleteMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuPromo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		storeFailed(c, "menu: delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

type CreateMenuPromoRequest struct {
	MenuItemID      uint `json:"menu_item_id" binding:"required"`
	PromoID         uint `json:"promo_id" binding:"required"`
	DiscountPercent int  `json:"discount_percent"`
}

// CreateMenuPromo links a menu item to a promo with a discount (staff only)
func CreateMenuPromo(c *gin.Context) {
	var req CreateMenuPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		validationFailed(c, validation.FieldErrors{"discount_percent": {"discount must be between 0 and 100"}})
		return
	}

	var item models.MenuItem
	if err := config.DB.First(&item, req.MenuItemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	var promo models.Promo
	if err := config.DB.First(&promo, req.PromoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	var existing models.MenuPromo
	err := config.DB.Where("menu_item_id = ? AND promo_id = ?", req.MenuItemID, req.PromoID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This menu item is already linked to this promo"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		storeFailed(c, "menu-promo: check link", err)
		return
	}

	link := models.MenuPromo{
		MenuItemID:      req.MenuItemID,
		PromoID:         req.PromoID,
		DiscountPercent: req.DiscountPercent,
	}
	if err := config.DB.Create(&link).Error; err != nil {
		storeFailed(c, "menu-promo: create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Promo linked to menu item", "link": link})
}

// DeleteMenuPromo removes a menu-promo link (staff only)
func DeleteMenuPromo(c *gin.Context) {
	var link models.MenuPromo
	if err := config.DB.First(&link, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err := config.DB.Delete(&link).Error; err != nil {
		storeFailed(c, "menu-promo: delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link removed"})
}
