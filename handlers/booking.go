package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cafe-api/bookingflow"
	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/validation"
)

type BookingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Persons int    `json:"persons" binding:"required,min=1"`
	Comment string `json:"comment"`
}

// validateBookingFields runs the shared booking validators and returns
// the normalized values. now is injected for deterministic tests.
func validateBookingFields(req *BookingRequest, now time.Time) (phone, date, clock string, errs validation.FieldErrors) {
	errs = validation.FieldErrors{}

	var err error
	if phone, err = validation.NormalizePhone(req.Phone); err != nil {
		errs.Add("phone", err.Error())
	}
	if req.Name != "" {
		if name, err := validation.ValidateName(req.Name); err != nil {
			errs.Add("name", err.Error())
		} else {
			req.Name = name
		}
	}
	if req.Email != "" {
		if req.Email, err = validation.NormalizeEmail(req.Email); err != nil {
			errs.Add("email", err.Error())
		}
	}
	if date, err = validation.ParseBookingDate(req.Date, now); err != nil {
		errs.Add("date", err.Error())
	}
	if clock, err = validation.ParseBookingTime(req.Time); err != nil {
		errs.Add("time", err.Error())
	}
	if date != "" && clock != "" {
		if err := validation.ValidateBookingDateTime(date, clock, now); err != nil {
			errs.Add("date", err.Error())
		}
	}
	return phone, date, clock, errs
}

// CreateBooking creates a table booking. Guests may book without an
// account; for authenticated callers the booking is attached to them.
func CreateBooking(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone, date, clock, errs := validateBookingFields(&req, time.Now())
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	booking := models.Booking{
		Reference: uuid.NewString(),
		Name:      req.Name,
		Phone:     phone,
		Email:     req.Email,
		Date:      date,
		Time:      clock,
		Persons:   req.Persons,
		Status:    models.BookingNew,
		Comment:   req.Comment,
	}
	if booking.Name == "" {
		booking.Name = "Guest"
	}
	if booking.Email == "" {
		booking.Email = "guest@example.com"
	}
	if middleware.IsAuthenticated(c) {
		userID := middleware.GetUserID(c)
		booking.UserID = &userID
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		storeFailed(c, "booking: create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created", "booking": booking})
}

// ListBookings returns the caller's bookings; staff see all bookings and
// may filter by ?status= and ?date=.
func ListBookings(c *gin.Context) {
	query := config.DB.Model(&models.Booking{})
	if middleware.IsStaff(c) {
		if status := c.Query("status"); status != "" {
			if !models.ValidBookingStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status. Must be: new, confirmed, cancelled or completed"})
				return
			}
			query = query.Where("status = ?", status)
		}
		if date := c.Query("date"); date != "" {
			query = query.Where("date = ?", date)
		}
	} else {
		query = query.Where("user_id = ?", middleware.GetUserID(c))
	}

	var bookings []models.Booking
	if err := query.Order("date desc, time desc").Find(&bookings).Error; err != nil {
		storeFailed(c, "booking: list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bookings), "bookings": bookings})
}

// loadBookingForCaller fetches the booking and enforces the access tier:
// staff reach any booking, owners only their own.
func loadBookingForCaller(c *gin.Context) (*models.Booking, bool) {
	var booking models.Booking
	if err := config.DB.First(&booking, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return nil, false
	}
	if !middleware.IsStaff(c) && !booking.OwnedBy(middleware.GetUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This booking does not belong to you"})
		return nil, false
	}
	return &booking, true
}

// GetBooking returns a single booking
func GetBooking(c *gin.Context) {
	booking, ok := loadBookingForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type UpdateBookingRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
	Persons *int    `json:"persons"`
	Comment *string `json:"comment"`
	Status  *string `json:"status"`
}

// UpdateBooking edits a booking's details. Status changes go through the
// booking lifecycle rules: staff drive the full lifecycle, an owner may
// only cancel their own pending booking.
func UpdateBooking(c *gin.Context) {
	booking, ok := loadBookingForCaller(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	errs := validation.FieldErrors{}

	if req.Name != nil {
		if name, err := validation.ValidateName(*req.Name); err != nil {
			errs.Add("name", err.Error())
		} else {
			booking.Name = name
		}
	}
	if req.Phone != nil {
		if phone, err := validation.NormalizePhone(*req.Phone); err != nil {
			errs.Add("phone", err.Error())
		} else {
			booking.Phone = phone
		}
	}
	if req.Email != nil {
		if email, err := validation.NormalizeEmail(*req.Email); err != nil {
			errs.Add("email", err.Error())
		} else {
			booking.Email = email
		}
	}
	if req.Date != nil {
		if date, err := validation.ParseBookingDate(*req.Date, now); err != nil {
			errs.Add("date", err.Error())
		} else {
			booking.Date = date
		}
	}
	if req.Time != nil {
		if clock, err := validation.ParseBookingTime(*req.Time); err != nil {
			errs.Add("time", err.Error())
		} else {
			booking.Time = clock
		}
	}
	if (req.Date != nil || req.Time != nil) && errs.Empty() {
		if err := validation.ValidateBookingDateTime(booking.Date, booking.Time, now); err != nil {
			errs.Add("date", err.Error())
		}
	}
	if req.Persons != nil {
		if *req.Persons < 1 {
			errs.Add("persons", "party size must be at least 1")
		} else {
			booking.Persons = *req.Persons
		}
	}
	if req.Comment != nil {
		booking.Comment = *req.Comment
	}
	if req.Status != nil && models.BookingStatus(*req.Status) != booking.Status {
		if !models.ValidBookingStatus(*req.Status) {
			errs.Add("status", "status must be one of: new, confirmed, cancelled, completed")
		} else {
			actor := bookingflow.ActorOwner
			if middleware.IsStaff(c) {
				actor = bookingflow.ActorStaff
			}
			if err := bookingflow.CanTransition(booking.Status, models.BookingStatus(*req.Status), actor); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "current_status": booking.Status})
				return
			}
			booking.Status = models.BookingStatus(*req.Status)
		}
	}

	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	if err := config.DB.Save(booking).Error; err != nil {
		storeFailed(c, "booking: update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated", "booking": booking})
}

type BookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus changes only the booking status
func UpdateBookingStatus(c *gin.Context) {
	booking, ok := loadBookingForCaller(c)
	if !ok {
		return
	}

	var req BookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidBookingStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status. Must be: new, confirmed, cancelled or completed"})
		return
	}

	actor := bookingflow.ActorOwner
	if middleware.IsStaff(c) {
		actor = bookingflow.ActorStaff
	}
	if err := bookingflow.CanTransition(booking.Status, models.BookingStatus(req.Status), actor); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "current_status": booking.Status})
		return
	}

	booking.Status = models.BookingStatus(req.Status)
	if err := config.DB.Save(booking).Error; err != nil {
		storeFailed(c, "booking: update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking status updated", "booking": booking})
}

// DeleteBooking removes a booking
func DeleteBooking(c *gin.Context) {
	booking, ok := loadBookingForCaller(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(booking).Error; err != nil {
		storeFailed(c, "booking: delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}
