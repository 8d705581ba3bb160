package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the access token for browser-style flows; API
// clients can send the same token as a bearer header instead.
const SessionCookie = "session"

const LoginPath = "/auth/login/"

// RequireLogin validates the session token and stores user_id and username
// in locals. Unauthenticated requests are not rejected with 401: they are
// redirected to the login page with a `next` parameter pointing back at the
// originally requested URL.
func RequireLogin(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFromRequest(c, secretBytes)
		if !ok {
			return c.Redirect(LoginPath+"?next="+c.OriginalURL(), fiber.StatusFound)
		}
		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// CurrentUser populates locals when a valid token is present and lets the
// request through either way. Public pages use it to personalize output.
func CurrentUser(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		if claims, ok := claimsFromRequest(c, secretBytes); ok {
			c.Locals("user_id", claims.UserID)
			c.Locals("username", claims.Username)
		}
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

func claimsFromRequest(c *fiber.Ctx, secret []byte) (*Claims, bool) {
	token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		token = c.Cookies(SessionCookie)
	}
	if token == "" {
		return nil, false
	}

	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, false
	}
	return claims, true
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
