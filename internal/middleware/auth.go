package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// tokenFromRequest looks for the JWT in, order: Authorization header,
// ?token= query (downloads cannot set headers), hp_token cookie.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if tok := c.Query("token"); tok != "" {
		return tok
	}

	if cookie, err := c.Cookie("hp_token"); err == nil {
		return cookie
	}
	return ""
}

// resolveUser validates the token and loads the user plus session row.
// Returns nil without writing a response when the token is absent or
// invalid.
func resolveUser(c *gin.Context, jwtSecret string, db *gorm.DB) *models.User {
	tokenStr := tokenFromRequest(c)
	if tokenStr == "" {
		return nil
	}

	claims, err := util.ParseToken(jwtSecret, tokenStr)
	if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil
	}

	// token must map to a live, unrevoked session
	if claims.SessionID != "" {
		var sess models.Session
		if err := db.First(&sess, "id = ?", claims.SessionID).Error; err != nil {
			return nil
		}
		if sess.Revoked || sess.ExpiresAt.Before(time.Now()) {
			return nil
		}
	}

	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil
	}
	// a closed account keeps no access, even with a live token
	if user.DeletedAt != nil {
		return nil
	}

	c.Set("currentUser", &user)
	c.Set("currentSessionID", claims.SessionID)
	return &user
}

// AuthMiddleware validates the JWT and puts the current user into the
// context, rejecting the request otherwise.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolveUser(c, jwtSecret, db) == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the current user when a valid token is present
// but lets anonymous requests through. Prediction submission works
// without a session; results are only recorded with one.
func OptionalAuth(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolveUser(c, jwtSecret, db)
		c.Next()
	}
}

// CurrentUser fetches the authenticated user placed by the middleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
