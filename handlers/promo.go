package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/validation"
)

const promoDateLayout = "2006-01-02"

// ListPromos returns promotions newest-first. The public sees active
// promos that have not yet ended; staff see everything.
func ListPromos(c *gin.Context) {
	query := config.DB.Model(&models.Promo{})
	if !middleware.IsStaff(c) {
		today := time.Now().Truncate(24 * time.Hour)
		query = query.Where("is_active = ? AND end_date >= ?", true, today)
	}
	var promos []models.Promo
	if err := query.Order("start_date desc").Find(&promos).Error; err != nil {
		storeFailed(c, "promo: list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promos": promos})
}

// GetPromo returns a single promo. Inactive or ended promos are hidden
// from the public.
func GetPromo(c *gin.Context) {
	var promo models.Promo
	if err := config.DB.First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}
	if !middleware.IsStaff(c) {
		today := time.Now().Truncate(24 * time.Hour)
		if !promo.IsActive || promo.EndDate.Before(today) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"promo": promo})
}

type PromoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	IsActive    *bool  `json:"is_active"`
}

func parsePromoDates(startRaw, endRaw string, errs validation.FieldErrors) (start, end time.Time) {
	var err error
	start, err = time.Parse(promoDateLayout, startRaw)
	if err != nil {
		errs.Add("start_date", "enter a valid date (YYYY-MM-DD)")
	}
	end, err = time.Parse(promoDateLayout, endRaw)
	if err != nil {
		errs.Add("end_date", "enter a valid date (YYYY-MM-DD)")
	}
	if errs.Empty() && end.Before(start) {
		errs.Add("end_date", "end date must not be before start date")
	}
	return start, end
}

// CreatePromo adds a promotion (staff only)
func CreatePromo(c *gin.Context) {
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}
	start, end := parsePromoDates(req.StartDate, req.EndDate, errs)
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	promo := models.Promo{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	if err := config.DB.Create(&promo).Error; err != nil {
		storeFailed(c, "promo: create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Promo created", "promo": promo})
}

type UpdatePromoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsActive    *bool   `json:"is_active"`
}

// UpdatePromo applies a partial update to a promotion (staff only)
func UpdatePromo(c *gin.Context) {
	var promo models.Promo
	if err := config.DB.First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	var req UpdatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}
	startRaw := promo.StartDate.Format(promoDateLayout)
	endRaw := promo.EndDate.Format(promoDateLayout)
	if req.StartDate != nil {
		startRaw = *req.StartDate
	}
	if req.EndDate != nil {
		endRaw = *req.EndDate
	}
	start, end := parsePromoDates(startRaw, endRaw, errs)
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	promo.StartDate = start
	promo.EndDate = end
	if req.Title != nil {
		promo.Title = *req.Title
	}
	if req.Description != nil {
		promo.Description = *req.Description
	}
	if req.Image != nil {
		promo.Image = *req.Image
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}

	if err := config.DB.Save(&promo).Error; err != nil {
		storeFailed(c, "promo: update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promo updated", "promo": promo})
}

// DeletePromo removes a promotion and its menu links (staff only)
func DeletePromo(c *gin.Context) {
	var promo models.Promo
	if err := config.DB.First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promo_id = ?", promo.ID).Delete(&models.MenuPromo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&promo).Error
	})
	if err != nil {
		storeFailed(c, "promo: delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promo deleted"})
}
