package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cafe-api/config"
	"cafe-api/middleware"
	"cafe-api/models"
	"cafe-api/validation"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account and issues a token. User creation
// and token issuance run in one transaction so a failure leaves no
// orphaned user row.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}

	email, err := validation.NormalizeEmail(req.Email)
	if err != nil {
		errs.Add("email", err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		errs.Add("password", err.Error())
	}
	firstName := req.FirstName
	if firstName != "" {
		if firstName, err = validation.ValidateName(firstName); err != nil {
			errs.Add("first_name", err.Error())
		}
	}
	lastName := req.LastName
	if lastName != "" {
		if lastName, err = validation.ValidateName(lastName); err != nil {
			errs.Add("last_name", err.Error())
		}
	}
	phone := req.Phone
	if phone != "" {
		if phone, err = validation.NormalizePhone(phone); err != nil {
			errs.Add("phone", err.Error())
		}
	}
	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		errs.Add("email", "a user with this email already exists")
		validationFailed(c, errs)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		storeFailed(c, "register: check email", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		storeFailed(c, "register: hash password", err)
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

	var token string
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		token, err = middleware.GenerateToken(&user)
		return err
	})
	if err != nil {
		storeFailed(c, "register: create user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

// Token authenticates a user by email and password and returns a JWT.
// The email is matched as given: login preserves case.
func Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := validation.ValidateEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		storeFailed(c, "token: sign", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(&user)})
}

type UpdateProfileRequest struct {
	Email           *string `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"current_password"`
}

// UpdateProfile updates the caller's own profile. Changing the email
// requires confirming the current password.
func UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}

	if req.FirstName != nil {
		name, err := validation.ValidateName(*req.FirstName)
		if err != nil {
			errs.Add("first_name", err.Error())
		} else {
			user.FirstName = name
		}
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			user.LastName = ""
		} else if name, err := validation.ValidateName(*req.LastName); err != nil {
			errs.Add("last_name", err.Error())
		} else {
			user.LastName = name
		}
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			user.Phone = ""
		} else if phone, err := validation.NormalizePhone(*req.Phone); err != nil {
			errs.Add("phone", err.Error())
		} else {
			user.Phone = phone
		}
	}
	if req.Email != nil {
		email, err := validation.NormalizeEmail(*req.Email)
		switch {
		case err != nil:
			errs.Add("email", err.Error())
		case email != user.Email:
			if req.CurrentPassword == "" {
				errs.Add("current_password", "confirm your current password to change the email")
			} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
				errs.Add("current_password", "current password is incorrect")
			} else {
				var other models.User
				if err := config.DB.Where("email = ? AND id <> ?", email, user.ID).First(&other).Error; err == nil {
					errs.Add("email", "this email is already in use by another user")
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					storeFailed(c, "profile: check email", err)
					return
				} else {
					user.Email = email
				}
			}
		}
	}

	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	if err := config.DB.Save(&user).Error; err != nil {
		storeFailed(c, "profile: save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(&user)})
}
