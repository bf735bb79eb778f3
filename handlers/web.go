package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cafe-api/bookingflow"
	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/validation"
)

// The website mirrors the API operations with server-rendered pages,
// session auth and flash messages. Both surfaces share the validation,
// pricing and lifecycle code so their invariants cannot diverge.

func pageData(c *gin.Context, title string, extra gin.H) gin.H {
	data := gin.H{
		"Title":   title,
		"User":    middleware.CurrentUser(c),
		"Flashes": middleware.Flashes(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// HomePage shows popular menu items and current promotions
func HomePage(c *gin.Context) {
	now := time.Now()

	var popular []models.MenuItem
	err := config.DB.Preload("Promos.Promo").
		Where("is_active = ? AND is_popular = ?", true, true).
		Order("sort_order, name").Limit(6).Find(&popular).Error
	if err != nil {
		slog.Error("home: load popular items", "error", err)
	}

	var promos []models.Promo
	err = config.DB.
		Where("is_active = ? AND end_date >= ?", true, now.Truncate(24*time.Hour)).
		Order("start_date desc").Limit(3).Find(&promos).Error
	if err != nil {
		slog.Error("home: load promos", "error", err)
	}

	c.HTML(http.StatusOK, "index.html", pageData(c, "Home", gin.H{
		"PopularItems": menuItemViews(popular, now),
		"Promos":       promos,
	}))
}

// MenuPage lists active menu items with category and popularity filters
func MenuPage(c *gin.Context) {
	now := time.Now()
	itemType := c.Query("type")
	popularOnly := c.Query("popular") == "on" || c.Query("popular") == "true"

	query := config.DB.Preload("Promos", func(db *gorm.DB) *gorm.DB {
		return db.Order("menu_promos.id")
	}).Preload("Promos.Promo").Where("is_active = ?", true)
	if itemType != "" && itemType != "all" && models.ValidCategory(itemType) {
		query = query.Where("category = ?", itemType)
	}
	if popularOnly {
		query = query.Where("is_popular = ?", true)
	}

	var items []models.MenuItem
	if err := query.Order("sort_order, name").Find(&items).Error; err != nil {
		slog.Error("menu page: load items", "error", err)
		middleware.AddFlash(c, "error", "Could not load the menu, please try again later")
	}

	c.HTML(http.StatusOK, "menu.html", pageData(c, "Menu", gin.H{
		"Items":   menuItemViews(items, now),
		"Type":    itemType,
		"Popular": popularOnly,
	}))
}

// PromoPage lists current promotions
func PromoPage(c *gin.Context) {
	var promos []models.Promo
	err := config.DB.
		Where("is_active = ? AND end_date >= ?", true, time.Now().Truncate(24*time.Hour)).
		Order("start_date desc").Find(&promos).Error
	if err != nil {
		slog.Error("promo page: load promos", "error", err)
		middleware.AddFlash(c, "error", "Could not load promotions, please try again later")
	}
	c.HTML(http.StatusOK, "promo.html", pageData(c, "Promotions", gin.H{"Promos": promos}))
}

// ContactsPage is static
func ContactsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "contacts.html", pageData(c, "Contacts", nil))
}

// BookingPage renders the booking form, prefilled for logged-in users
func BookingPage(c *gin.Context) {
	form := gin.H{
		"name": "", "phone": "", "email": "",
		"date": "", "time": "", "persons": "", "comment": "",
	}
	if user := middleware.CurrentUser(c); user != nil {
		form["name"] = user.DisplayName()
		form["email"] = user.Email
		form["phone"] = user.Phone
	}
	c.HTML(http.StatusOK, "booking.html", pageData(c, "Book a table", gin.H{"Form": form}))
}

// SubmitBooking handles the booking form
func SubmitBooking(c *gin.Context) {
	req := BookingRequest{
		Name:    c.PostForm("name"),
		Phone:   c.PostForm("phone"),
		Email:   c.PostForm("email"),
		Date:    c.PostForm("date"),
		Time:    c.PostForm("time"),
		Comment: c.PostForm("comment"),
	}
	form := gin.H{
		"name": req.Name, "phone": req.Phone, "email": req.Email,
		"date": req.Date, "time": req.Time, "comment": req.Comment,
		"persons": c.PostForm("persons"),
	}

	persons, convErr := strconv.Atoi(c.PostForm("persons"))
	phone, date, clock, errs := validateBookingFields(&req, time.Now())
	if convErr != nil || persons < 1 {
		errs.Add("persons", "enter the party size")
	}
	if !errs.Empty() {
		c.HTML(http.StatusBadRequest, "booking.html", pageData(c, "Book a table", gin.H{
			"Form":   form,
			"Errors": errs,
		}))
		return
	}

	booking := models.Booking{
		Reference: uuid.NewString(),
		Name:      req.Name,
		Phone:     phone,
		Email:     req.Email,
		Date:      date,
		Time:      clock,
		Persons:   persons,
		Status:    models.BookingNew,
		Comment:   req.Comment,
	}
	if booking.Name == "" {
		booking.Name = "Guest"
	}
	if booking.Email == "" {
		booking.Email = "guest@example.com"
	}
	if user := middleware.CurrentUser(c); user != nil {
		booking.UserID = &user.ID
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		slog.Error("booking form: create", "error", err)
		middleware.AddFlash(c, "error", "Could not create the booking, please try again later")
		c.Redirect(http.StatusFound, "/booking/")
		return
	}

	middleware.AddFlash(c, "success", "Booking created! Reference: "+booking.Reference)
	c.Redirect(http.StatusFound, "/booking/")
}

// LoginPage renders the login form
func LoginPage(c *gin.Context) {
	if middleware.IsAuthenticated(c) {
		middleware.AddFlash(c, "info", "You are already logged in")
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", pageData(c, "Login", gin.H{"Form": gin.H{"email": ""}}))
}

// SubmitLogin handles the login form. The email keeps its case for
// credential matching.
func SubmitLogin(c *gin.Context) {
	rawEmail := c.PostForm("email")
	password := c.PostForm("password")
	form := gin.H{"email": rawEmail}

	errs := validation.FieldErrors{}
	email, err := validation.ValidateEmail(rawEmail)
	if err != nil {
		errs.Add("email", err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		errs.Add("password", err.Error())
	}
	if !errs.Empty() {
		c.HTML(http.StatusBadRequest, "login.html", pageData(c, "Login", gin.H{"Form": form, "Errors": errs}))
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		middleware.AddFlash(c, "error", "Invalid email or password")
		c.HTML(http.StatusUnauthorized, "login.html", pageData(c, "Login", gin.H{"Form": form}))
		return
	}

	middleware.WebLogin(c, &user)
	middleware.AddFlash(c, "success", "Welcome back, "+user.DisplayName()+"!")

	next := c.Query("next")
	if next == "" || next[0] != '/' {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form
func RegisterPage(c *gin.Context) {
	if middleware.IsAuthenticated(c) {
		middleware.AddFlash(c, "info", "You are already logged in")
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", pageData(c, "Register", gin.H{
		"Form": gin.H{"email": "", "first_name": "", "last_name": "", "phone": ""},
	}))
}

// SubmitRegister handles the registration form. User creation runs in a
// transaction so a failure leaves no partial account behind.
func SubmitRegister(c *gin.Context) {
	form := gin.H{
		"email":      c.PostForm("email"),
		"first_name": c.PostForm("first_name"),
		"last_name":  c.PostForm("last_name"),
		"phone":      c.PostForm("phone"),
	}

	errs := validation.FieldErrors{}

	email, err := validation.NormalizeEmail(c.PostForm("email"))
	if err != nil {
		errs.Add("email", err.Error())
	}
	firstName, err := validation.ValidateName(c.PostForm("first_name"))
	if err != nil {
		errs.Add("first_name", err.Error())
	}
	lastName := c.PostForm("last_name")
	if lastName != "" {
		if lastName, err = validation.ValidateName(lastName); err != nil {
			errs.Add("last_name", err.Error())
		}
	}
	phone := c.PostForm("phone")
	if phone != "" {
		if phone, err = validation.NormalizePhone(phone); err != nil {
			errs.Add("phone", err.Error())
		}
	}
	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")
	if err := validation.ValidatePassword(password1); err != nil {
		errs.Add("password1", err.Error())
	} else if password1 != password2 {
		errs.Add("password2", "passwords do not match")
	}

	if errs.Empty() {
		var existing models.User
		if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			errs.Add("email", "a user with this email already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("register form: check email", "error", err)
			middleware.AddFlash(c, "error", "Something went wrong, please try again later")
			c.Redirect(http.StatusFound, "/register/")
			return
		}
	}

	if !errs.Empty() {
		c.HTML(http.StatusBadRequest, "register.html", pageData(c, "Register", gin.H{"Form": form, "Errors": errs}))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("register form: hash password", "error", err)
		middleware.AddFlash(c, "error", "Something went wrong, please try again later")
		c.Redirect(http.StatusFound, "/register/")
		return
	}

	user := models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := config.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		slog.Error("register form: create user", "error", err)
		middleware.AddFlash(c, "error", "Something went wrong, please try again later")
		c.Redirect(http.StatusFound, "/register/")
		return
	}

	middleware.WebLogin(c, &user)
	middleware.AddFlash(c, "success", "Registration successful, welcome!")
	c.Redirect(http.StatusFound, "/")
}

// LogoutPage ends the session
func LogoutPage(c *gin.Context) {
	if middleware.IsAuthenticated(c) {
		middleware.WebLogout(c)
		middleware.AddFlash(c, "success", "You have been logged out")
	}
	c.Redirect(http.StatusFound, "/")
}

// ProfilePage shows the user's bookings and profile form
func ProfilePage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var bookings []models.Booking
	err := config.DB.Where("user_id = ?", user.ID).
		Order("date desc, time desc").Find(&bookings).Error
	if err != nil {
		slog.Error("profile page: load bookings", "error", err)
		middleware.AddFlash(c, "error", "Could not load your bookings")
	}

	c.HTML(http.StatusOK, "profile.html", pageData(c, "Profile", gin.H{
		"Bookings": bookings,
		"Form": gin.H{
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
		},
	}))
}

// SubmitProfile handles the profile update form. Changing the email
// requires the current password.
func SubmitProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	errs := validation.FieldErrors{}

	firstName, err := validation.ValidateName(c.PostForm("first_name"))
	if err != nil {
		errs.Add("first_name", err.Error())
	}
	lastName := c.PostForm("last_name")
	if lastName != "" {
		if lastName, err = validation.ValidateName(lastName); err != nil {
			errs.Add("last_name", err.Error())
		}
	}
	phone := c.PostForm("phone")
	if phone != "" {
		if phone, err = validation.NormalizePhone(phone); err != nil {
			errs.Add("phone", err.Error())
		}
	}

	email, err := validation.NormalizeEmail(c.PostForm("email"))
	if err != nil {
		errs.Add("email", err.Error())
	} else if email != user.Email {
		currentPassword := c.PostForm("current_password")
		if currentPassword == "" {
			errs.Add("current_password", "confirm your current password to change the email")
		} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
			errs.Add("current_password", "current password is incorrect")
		} else {
			var other models.User
			dbErr := config.DB.Where("email = ? AND id <> ?", email, user.ID).First(&other).Error
			if dbErr == nil {
				errs.Add("email", "this email is already in use by another user")
			} else if !errors.Is(dbErr, gorm.ErrRecordNotFound) {
				slog.Error("profile form: check email", "error", dbErr)
				middleware.AddFlash(c, "error", "Something went wrong, please try again later")
				c.Redirect(http.StatusFound, "/profile/")
				return
			}
		}
	}

	if !errs.Empty() {
		var bookings []models.Booking
		config.DB.Where("user_id = ?", user.ID).Order("date desc, time desc").Find(&bookings)
		c.HTML(http.StatusBadRequest, "profile.html", pageData(c, "Profile", gin.H{
			"Bookings": bookings,
			"Errors":   errs,
			"Form": gin.H{
				"email":      c.PostForm("email"),
				"first_name": c.PostForm("first_name"),
				"last_name":  c.PostForm("last_name"),
				"phone":      c.PostForm("phone"),
			},
		}))
		return
	}

	user.Email = email
	user.FirstName = firstName
	user.LastName = lastName
	user.Phone = phone
	if err := config.DB.Save(user).Error; err != nil {
		slog.Error("profile form: save", "error", err)
		middleware.AddFlash(c, "error", "Could not update your profile, please try again later")
	} else {
		middleware.AddFlash(c, "success", "Profile updated")
	}
	c.Redirect(http.StatusFound, "/profile/")
}

// SubmitPasswordChange handles the change-password form
func SubmitPasswordChange(c *gin.Context) {
	user := middleware.CurrentUser(c)

	oldPassword := c.PostForm("old_password")
	newPassword1 := c.PostForm("new_password1")
	newPassword2 := c.PostForm("new_password2")

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		middleware.AddFlash(c, "error", "Current password is incorrect")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}
	if err := validation.ValidatePassword(newPassword1); err != nil {
		middleware.AddFlash(c, "error", err.Error())
		c.Redirect(http.StatusFound, "/profile/")
		return
	}
	if newPassword1 != newPassword2 {
		middleware.AddFlash(c, "error", "New passwords do not match")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword1), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("password form: hash", "error", err)
		middleware.AddFlash(c, "error", "Something went wrong, please try again later")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}
	user.PasswordHash = string(hash)
	if err := config.DB.Save(user).Error; err != nil {
		slog.Error("password form: save", "error", err)
		middleware.AddFlash(c, "error", "Could not change the password, please try again later")
	} else {
		middleware.AddFlash(c, "success", "Password changed")
	}
	c.Redirect(http.StatusFound, "/profile/")
}

// CancelBookingWeb lets a user cancel their own pending booking from the
// profile page
func CancelBookingWeb(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var booking models.Booking
	if err := config.DB.First(&booking, c.Param("id")).Error; err != nil {
		middleware.AddFlash(c, "error", "Booking not found")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}
	if !booking.OwnedBy(user.ID) {
		middleware.AddFlash(c, "error", "This booking does not belong to you")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}
	if err := bookingflow.CanTransition(booking.Status, models.BookingCancelled, bookingflow.ActorOwner); err != nil {
		middleware.AddFlash(c, "error", "This booking can no longer be cancelled")
		c.Redirect(http.StatusFound, "/profile/")
		return
	}

	booking.Status = models.BookingCancelled
	if err := config.DB.Save(&booking).Error; err != nil {
		slog.Error("profile: cancel booking", "error", err)
		middleware.AddFlash(c, "error", "Could not cancel the booking, please try again later")
	} else {
		middleware.AddFlash(c, "success", "Booking cancelled")
	}
	c.Redirect(http.StatusFound, "/profile/")
}
