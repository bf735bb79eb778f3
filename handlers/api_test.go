package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/routes"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	config.DB = db
	config.JWTSecret = []byte("test-secret")
	middleware.InitSessionStore("test-session-secret")

	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")
	routes.SetupRoutes(r)
	return r
}

func createUser(t *testing.T, email string, role models.UserRole, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		FirstName:    "Test",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, config.DB.Create(user).Error)
	return user
}

func bearer(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/register/", "", gin.H{
		"email":      "Anna@Example.com",
		"password":   "supersecret",
		"first_name": "Anna",
		"phone":      "89161234567",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "anna@example.com", user["email"])
	assert.Equal(t, "+79161234567", user["phone"])
	assert.Equal(t, "user", user["role"])

	// same email, different case: rejected with a field error
	w = doJSON(r, http.MethodPost, "/api/register/", "", gin.H{
		"email":    "ANNA@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode(t, w)
	errs := resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")

	// the first account is unaffected
	var count int64
	config.DB.Model(&models.User{}).Where("email = ?", "anna@example.com").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/register/", "", gin.H{
		"email":    "bad-email",
		"password": "short",
		"phone":    "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	errs := resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "phone")
}

func TestTokenLogin(t *testing.T) {
	r := setupRouter(t)
	createUser(t, "user@example.com", models.RoleUser, "supersecret")

	w := doJSON(r, http.MethodPost, "/api/token/", "", gin.H{
		"email":    "user@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])

	// wrong password: generic error, no field detail
	w = doJSON(r, http.MethodPost, "/api/token/", "", gin.H{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "Invalid email or password", resp["error"])

	// unknown user: same generic error
	w = doJSON(r, http.MethodPost, "/api/token/", "", gin.H{
		"email":    "nobody@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMenuVisibilityAndFilters(t *testing.T) {
	r := setupRouter(t)
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	items := []models.MenuItem{
		{Name: "Espresso", Category: models.CategoryCoffee, Price: 150, IsActive: true, SortOrder: 1},
		{Name: "Cheesecake", Category: models.CategoryDesserts, Price: 320, IsActive: true, SortOrder: 2},
		{Name: "Secret brew", Category: models.CategoryCoffee, Price: 500, IsActive: false},
	}
	for i := range items {
		require.NoError(t, config.DB.Create(&items[i]).Error)
	}

	// public sees active items only
	w := doJSON(r, http.MethodGet, "/api/menu/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.EqualValues(t, 2, resp["count"])

	// staff sees everything
	w = doJSON(r, http.MethodGet, "/api/menu/", bearer(t, staff), nil)
	resp = decode(t, w)
	assert.EqualValues(t, 3, resp["count"])

	// category filter
	w = doJSON(r, http.MethodGet, "/api/menu/?type=desserts", "", nil)
	resp = decode(t, w)
	assert.EqualValues(t, 1, resp["count"])

	w = doJSON(r, http.MethodGet, "/api/menu/?type=sushi", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// inactive item is hidden from the public but visible to staff
	inactiveID := items[2].ID
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/menu/%d/", inactiveID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/menu/%d/", inactiveID), bearer(t, staff), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMenuWriteIsStaffOnly(t *testing.T) {
	r := setupRouter(t)
	user := createUser(t, "user@example.com", models.RoleUser, "supersecret")
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	body := gin.H{"name": "Latte", "category": "coffee", "price": 220.0}

	w := doJSON(r, http.MethodPost, "/api/menu/", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/menu/", bearer(t, user), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/menu/", bearer(t, staff), body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// negative price rejected
	w = doJSON(r, http.MethodPost, "/api/menu/", bearer(t, staff), gin.H{
		"name": "Broken", "category": "coffee", "price": -1.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuDiscountFields(t *testing.T) {
	r := setupRouter(t)
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	item := models.MenuItem{Name: "Raf", Category: models.CategoryCoffee, Price: 300, IsActive: true}
	require.NoError(t, config.DB.Create(&item).Error)

	today := time.Now().Truncate(24 * time.Hour)
	promo := models.Promo{
		Title:       "Coffee week",
		Description: "20% off",
		StartDate:   today.AddDate(0, 0, -1),
		EndDate:     today.AddDate(0, 0, 5),
		IsActive:    true,
	}
	require.NoError(t, config.DB.Create(&promo).Error)

	w := doJSON(r, http.MethodPost, "/api/menu-promo/", bearer(t, staff), gin.H{
		"menu_item_id":     item.ID,
		"promo_id":         promo.ID,
		"discount_percent": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// duplicate pair rejected
	w = doJSON(r, http.MethodPost, "/api/menu-promo/", bearer(t, staff), gin.H{
		"menu_item_id": item.ID, "promo_id": promo.ID, "discount_percent": 50,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/menu/%d/", item.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	got := resp["item"].(map[string]interface{})
	assert.Equal(t, true, got["has_discount"])
	assert.EqualValues(t, 20, got["discount_percent"])
	assert.InDelta(t, 240, got["discount_price"].(float64), 0.001)
}

func TestPromoPublicFilter(t *testing.T) {
	r := setupRouter(t)
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	today := time.Now().Truncate(24 * time.Hour)
	promos := []models.Promo{
		{Title: "Current", Description: "d", StartDate: today.AddDate(0, 0, -2), EndDate: today.AddDate(0, 0, 2), IsActive: true},
		{Title: "Ended", Description: "d", StartDate: today.AddDate(0, 0, -10), EndDate: today.AddDate(0, 0, -1), IsActive: true},
		{Title: "Disabled", Description: "d", StartDate: today.AddDate(0, 0, -2), EndDate: today.AddDate(0, 0, 2), IsActive: false},
	}
	for i := range promos {
		require.NoError(t, config.DB.Create(&promos[i]).Error)
	}

	w := doJSON(r, http.MethodGet, "/api/promo/", "", nil)
	resp := decode(t, w)
	assert.EqualValues(t, 1, resp["count"])

	w = doJSON(r, http.MethodGet, "/api/promo/", bearer(t, staff), nil)
	resp = decode(t, w)
	assert.EqualValues(t, 3, resp["count"])
}

func TestPromoDateValidation(t *testing.T) {
	r := setupRouter(t)
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	w := doJSON(r, http.MethodPost, "/api/promo/", bearer(t, staff), gin.H{
		"title":       "Backwards",
		"description": "end before start",
		"start_date":  "2026-06-10",
		"end_date":    "2026-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	errs := resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "end_date")
}

func TestGuestBooking(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/booking/", "", gin.H{
		"phone":   "8 (916) 123-45-67",
		"date":    futureDate(7),
		"time":    "19:30",
		"persons": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	booking := resp["booking"].(map[string]interface{})
	assert.Equal(t, "+79161234567", booking["phone"])
	assert.Equal(t, "Guest", booking["name"])
	assert.Equal(t, "guest@example.com", booking["email"])
	assert.Equal(t, "new", booking["status"])
	assert.Nil(t, booking["user_id"])
	assert.NotEmpty(t, booking["reference"])
}

func TestBookingValidation(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/booking/", "", gin.H{
		"phone":   "12345",
		"date":    "2020-01-01",
		"time":    "07:59",
		"persons": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	errs := resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "date")
	assert.Contains(t, errs, "time")

	// more than a year ahead
	w = doJSON(r, http.MethodPost, "/api/booking/", "", gin.H{
		"phone":   "89161234567",
		"date":    time.Now().AddDate(1, 0, 2).Format("2006-01-02"),
		"time":    "12:00",
		"persons": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode(t, w)
	errs = resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "date")
}

func TestBookingOwnership(t *testing.T) {
	r := setupRouter(t)
	owner := createUser(t, "owner@example.com", models.RoleUser, "supersecret")
	other := createUser(t, "other@example.com", models.RoleUser, "supersecret")
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	w := doJSON(r, http.MethodPost, "/api/booking/", bearer(t, owner), gin.H{
		"phone":   "89161234567",
		"date":    futureDate(7),
		"time":    "19:00",
		"persons": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	bookingID := int(resp["booking"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/booking/%d/", bookingID)

	// owner reads their booking
	w = doJSON(r, http.MethodGet, path, bearer(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// another user is denied
	w = doJSON(r, http.MethodGet, path, bearer(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// staff read anything
	w = doJSON(r, http.MethodGet, path, bearer(t, staff), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// list scoping: the other user sees none, staff see all
	w = doJSON(r, http.MethodGet, "/api/booking/", bearer(t, other), nil)
	resp = decode(t, w)
	assert.EqualValues(t, 0, resp["count"])
	w = doJSON(r, http.MethodGet, "/api/booking/", bearer(t, staff), nil)
	resp = decode(t, w)
	assert.EqualValues(t, 1, resp["count"])
}

func TestBookingStatusTransitions(t *testing.T) {
	r := setupRouter(t)
	owner := createUser(t, "owner@example.com", models.RoleUser, "supersecret")
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")

	booking := models.Booking{
		Reference: "ref-1", UserID: &owner.ID, Name: "Test", Phone: "+79161234567",
		Email: "owner@example.com", Date: futureDate(7), Time: "19:00",
		Persons: 2, Status: models.BookingNew,
	}
	require.NoError(t, config.DB.Create(&booking).Error)
	statusPath := fmt.Sprintf("/api/booking/%d/status/", booking.ID)

	// owner cannot confirm their own booking
	w := doJSON(r, http.MethodPut, statusPath, bearer(t, owner), gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// staff confirm
	w = doJSON(r, http.MethodPut, statusPath, bearer(t, staff), gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// owner cannot cancel once confirmed
	w = doJSON(r, http.MethodPut, statusPath, bearer(t, owner), gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// staff complete
	w = doJSON(r, http.MethodPut, statusPath, bearer(t, staff), gin.H{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	// completed is terminal, even for staff
	w = doJSON(r, http.MethodPut, statusPath, bearer(t, staff), gin.H{"status": "new"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOwnerCancelsPendingBooking(t *testing.T) {
	r := setupRouter(t)
	owner := createUser(t, "owner@example.com", models.RoleUser, "supersecret")

	booking := models.Booking{
		Reference: "ref-2", UserID: &owner.ID, Name: "Test", Phone: "+79161234567",
		Email: "owner@example.com", Date: futureDate(3), Time: "12:00",
		Persons: 2, Status: models.BookingNew,
	}
	require.NoError(t, config.DB.Create(&booking).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/booking/%d/status/", booking.ID),
		bearer(t, owner), gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved models.Booking
	require.NoError(t, config.DB.First(&saved, booking.ID).Error)
	assert.Equal(t, models.BookingCancelled, saved.Status)
}

func TestUserManagementIsSuperuserOnly(t *testing.T) {
	r := setupRouter(t)
	staff := createUser(t, "staff@example.com", models.RoleStaff, "supersecret")
	super := createUser(t, "root@example.com", models.RoleSuperuser, "supersecret")

	w := doJSON(r, http.MethodGet, "/api/users/", bearer(t, staff), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/", bearer(t, super), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.EqualValues(t, 2, resp["count"])

	// promote the staff member
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/users/%d/", staff.ID),
		bearer(t, super), gin.H{"role": "superuser"})
	assert.Equal(t, http.StatusOK, w.Code)

	var saved models.User
	require.NoError(t, config.DB.First(&saved, staff.ID).Error)
	assert.Equal(t, models.RoleSuperuser, saved.Role)
}

func TestProfileEmailChangeRequiresPassword(t *testing.T) {
	r := setupRouter(t)
	user := createUser(t, "user@example.com", models.RoleUser, "supersecret")
	auth := bearer(t, user)

	// no password supplied
	w := doJSON(r, http.MethodPut, "/api/profile/", auth, gin.H{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	errs := resp["errors"].(map[string]interface{})
	assert.Contains(t, errs, "current_password")

	// wrong password
	w = doJSON(r, http.MethodPut, "/api/profile/", auth, gin.H{
		"email": "new@example.com", "current_password": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// correct password
	w = doJSON(r, http.MethodPut, "/api/profile/", auth, gin.H{
		"email": "new@example.com", "current_password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved models.User
	require.NoError(t, config.DB.First(&saved, user.ID).Error)
	assert.Equal(t, "new@example.com", saved.Email)
}
