package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cafe-api/config"
	"cafe-api/models"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

func parseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return config.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// AuthRequired validates the JWT and injects claims into context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth injects claims when a valid bearer token is present but
// never rejects the request. Guests may create bookings and browse the
// menu; staff get the unfiltered view on the same endpoints.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RoleRequired enforces that the caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		callerRole := models.UserRole(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Required role(s): " + rolesString(roles)})
		c.Abort()
	}
}

// StaffRequired admits staff and superusers
func StaffRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleStaff, models.RoleSuperuser)
}

// SuperuserRequired admits superusers only
func SuperuserRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleSuperuser)
}

func rolesString(roles []models.UserRole) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += string(r)
	}
	return s
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("userID", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", string(claims.Role))
}

// GetUserID extracts the caller's user ID from context (0 when anonymous)
func GetUserID(c *gin.Context) uint {
	if val, ok := c.Get("userID"); ok {
		return val.(uint)
	}
	return 0
}

// GetRole extracts the caller's role from context (empty when anonymous)
func GetRole(c *gin.Context) models.UserRole {
	if val, ok := c.Get("role"); ok {
		return models.UserRole(val.(string))
	}
	return ""
}

// IsAuthenticated reports whether the request carries valid credentials
func IsAuthenticated(c *gin.Context) bool {
	_, ok := c.Get("userID")
	return ok
}

// IsStaff reports whether the caller is staff or superuser
func IsStaff(c *gin.Context) bool {
	return GetRole(c).IsStaff()
}
