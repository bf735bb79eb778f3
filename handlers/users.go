package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cafe-api/config"
	"cafe-api/models"
	"cafe-api/validation"
)

// User management, superuser only.

// ListUsers returns all user accounts, optionally filtered by role
func ListUsers(c *gin.Context) {
	query := config.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		storeFailed(c, "users: list", err)
		return
	}
	views := make([]gin.H, 0, len(users))
	for i := range users {
		views = append(views, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "users": views})
}

// GetUser returns a single user account
func GetUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(&user)})
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
}

// UpdateUser edits a user account, including the role flag
func UpdateUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := validation.FieldErrors{}

	if req.Email != nil {
		email, err := validation.NormalizeEmail(*req.Email)
		if err != nil {
			errs.Add("email", err.Error())
		} else if email != user.Email {
			var other models.User
			if err := config.DB.Where("email = ? AND id <> ?", email, user.ID).First(&other).Error; err == nil {
				errs.Add("email", "this email is already in use by another user")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				storeFailed(c, "users: check email", err)
				return
			} else {
				user.Email = email
			}
		}
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
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
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if role != models.RoleUser && role != models.RoleStaff && role != models.RoleSuperuser {
			errs.Add("role", "role must be one of: user, staff, superuser")
		} else {
			user.Role = role
		}
	}

	if !errs.Empty() {
		validationFailed(c, errs)
		return
	}

	if err := config.DB.Save(&user).Error; err != nil {
		storeFailed(c, "users: save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(&user)})
}

// DeleteUser removes a user account and their bookings
func DeleteUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		storeFailed(c, "users: delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
