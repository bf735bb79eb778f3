package models

import "time"

// MenuCategory is the fixed set of menu sections
type MenuCategory string

const (
	CategoryCoffee    MenuCategory = "coffee"
	CategoryTea       MenuCategory = "tea"
	CategoryDesserts  MenuCategory = "desserts"
	CategoryBreakfast MenuCategory = "breakfast"
)

// ValidCategory reports whether s names a known menu category.
func ValidCategory(s string) bool {
	switch MenuCategory(s) {
	case CategoryCoffee, CategoryTea, CategoryDesserts, CategoryBreakfast:
		return true
	}
	return false
}

type MenuItem struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"not null"`
	Category    MenuCategory `json:"category" gorm:"not null;default:'coffee'"`
	Description string       `json:"description"`
	Price       float64      `json:"price" gorm:"not null"`
	Image       string       `json:"image"`
	IsActive    bool         `json:"is_active" gorm:"default:true"`
	IsPopular   bool         `json:"is_popular" gorm:"default:false"`
	SortOrder   int          `json:"sort_order" gorm:"default:0"`
	Promos      []MenuPromo  `json:"-" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Promo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Image       string    `json:"image"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

// Effective reports whether the promo is active and its inclusive date
// range contains today. Dates are compared at day granularity.
func (p *Promo) Effective(today time.Time) bool {
	if !p.IsActive {
		return false
	}
	day := today.Truncate(24 * time.Hour)
	start := p.StartDate.Truncate(24 * time.Hour)
	end := p.EndDate.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// MenuPromo links a menu item to a promo with a discount percentage.
// The (menu_item, promo) pair is unique.
type MenuPromo struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	MenuItemID      uint      `json:"menu_item_id" gorm:"not null;uniqueIndex:idx_menu_promo"`
	MenuItem        MenuItem  `json:"-" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	PromoID         uint      `json:"promo_id" gorm:"not null;uniqueIndex:idx_menu_promo"`
	Promo           Promo     `json:"promo,omitempty" gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE"`
	DiscountPercent int       `json:"discount_percent" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
}
