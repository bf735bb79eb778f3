package models

import "time"

// BookingStatus represents the lifecycle state of a table booking
type BookingStatus string

const (
	BookingNew       BookingStatus = "new"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ValidBookingStatus reports whether s names a known booking status.
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingNew, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking is a table reservation. UserID is nil for guest bookings made
// without an account. Date and Time are kept in their canonical string
// forms ("2006-01-02" and "15:04") as produced by the validation layer.
type Booking struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Reference string        `json:"reference" gorm:"uniqueIndex;not null"`
	UserID    *uint         `json:"user_id"`
	User      *User         `json:"-" gorm:"foreignKey:UserID"`
	Name      string        `json:"name" gorm:"not null;default:'Guest'"`
	Phone     string        `json:"phone" gorm:"not null"`
	Email     string        `json:"email" gorm:"not null;default:'guest@example.com'"`
	Date      string        `json:"date" gorm:"not null"`
	Time      string        `json:"time" gorm:"not null"`
	Persons   int           `json:"persons" gorm:"not null"`
	Status    BookingStatus `json:"status" gorm:"not null;default:'new'"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OwnedBy reports whether the booking belongs to the given user.
// Guest bookings belong to nobody.
func (b *Booking) OwnedBy(userID uint) bool {
	return b.UserID != nil && *b.UserID == userID
}
