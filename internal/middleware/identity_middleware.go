package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/pkg/util"
)

// IdentityKey is the gin context key holding the resolved model.Identity.
const IdentityKey = "identity"

// GuestTokenCookie scopes anonymous carts to a device.
const GuestTokenCookie = "vk_guest_token"

const guestCookieMaxAge = 60 * 60 * 24 * 180 // 180 days

type IdentityMiddleware struct {
	jwtSecret string
}

func NewIdentityMiddleware(jwtSecret string) *IdentityMiddleware {
	return &IdentityMiddleware{jwtSecret: jwtSecret}
}

// Resolve attaches the active identity to the request context. A valid bearer
// token yields an authenticated identity; anything else degrades to a guest
// identity scoped by a device token (minted and set as a cookie when absent).
// Requests are never rejected here: the cart is fully usable anonymously.
func (m *IdentityMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if token := bearerToken(c); token != "" {
			claims, err := util.ValidateToken(token, m.jwtSecret)
			if err == nil {
				c.Set(IdentityKey, model.Identity{
					Authenticated: true,
					UserID:        claims.UserID,
					Email:         claims.Email,
					// a guest token lingering past login marks a cart
					// awaiting handover to the account partition
					GuestToken: guestToken(c),
				})
				c.Next()
				return
			}
			log.Debug("Bearer token rejected, continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
		}

		token := guestToken(c)
		if token == "" {
			token = uuid.NewString()
			c.SetCookie(GuestTokenCookie, token, guestCookieMaxAge, "/", "", false, true)
			log.Debug("Issued new guest token", nil)
		}

		c.Set(IdentityKey, model.Identity{GuestToken: token})
		c.Next()
	}
}

// guestToken reads the device token from the header or cookie, if any.
func guestToken(c *gin.Context) string {
	if token := c.GetHeader("X-Guest-Token"); token != "" {
		return token
	}
	if token, err := c.Cookie(GuestTokenCookie); err == nil {
		return token
	}
	return ""
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetIdentity retrieves the resolved identity from the gin context.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := value.(model.Identity)
	return identity, ok
}
