package middleware

import (
	"net/http"
	"os"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Capabilities checked by route guards and controllers.
const (
	CapReview       = "contribution:review"
	CapApprove      = "contribution:approve"
	CapDRDReview    = "drd:review"
	CapDRDApprove   = "drd:approve"
	CapGovtFiling   = "drd:govt_filing"
	CapManagePolicy = "policy:manage"
)

// rolePermissions is the capability oracle: role name → granted capabilities.
var rolePermissions = map[string][]string{
	"drd_member": {CapReview, CapDRDReview},
	"drd_head":   {CapReview, CapApprove, CapDRDReview, CapDRDApprove, CapGovtFiling},
	"admin":      {CapReview, CapApprove, CapDRDReview, CapDRDApprove, CapGovtFiling, CapManagePolicy},
	"finance":    {},
	"mentor":     {},
	"applicant":  {},
}

// HasPermission reports whether the role grants the capability.
func HasPermission(role, capability string) bool {
	for _, cap := range rolePermissions[role] {
		if cap == capability {
			return true
		}
	}
	return false
}

// AuthMiddleware validates the JWT and loads the caller into the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token claims"})
			c.Abort()
			return
		}

		// The account must still exist; tokens outlive deactivations otherwise.
		var user models.User
		if err := config.DB.Preload("Role").
			Where("user_id = ? AND delete_at IS NULL", claims.UserID).
			First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
			c.Abort()
			return
		}

		c.Set("userID", user.UserID)
		c.Set("email", user.Email)
		c.Set("roleName", user.Role.Role)
		c.Set("currentUser", &user)

		c.Next()
	}
}

// RequirePermission gates a route on one capability.
func RequirePermission(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, exists := c.Get("roleName")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Role not found"})
			c.Abort()
			return
		}
		if !HasPermission(roleName.(string), capability) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole gates a route on an exact role name.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, exists := c.Get("roleName")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Role not found"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if roleName.(string) == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Insufficient permissions"})
		c.Abort()
	}
}

// CurrentUser pulls the authenticated user out of the context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("currentUser")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
