package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/signup/", func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, tokens, err := svc.Signup(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		setSessionCookie(c, tokens.AccessToken)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": tokens})
	})

	r.Get("/login/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"title": "Log in",
			"next":  c.Query("next", "/"),
		})
	})

	r.Post("/login/", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password required")
		}
		_, tokens, err := svc.Login(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		setSessionCookie(c, tokens.AccessToken)
		if next := c.Query("next"); safeNext(next) {
			return c.Redirect(next, fiber.StatusFound)
		}
		return c.JSON(tokens)
	})

	r.Get("/logout/", func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
		})
		return c.Redirect("/", fiber.StatusFound)
	})

	r.Post("/refresh/", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token required")
		}

		claims, err := svc.ValidateRefreshToken(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		resp, err := svc.GenerateTokens(c.Context(), claims.UserID, claims.Username)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		setSessionCookie(c, resp.AccessToken)
		return c.JSON(resp)
	})
}

// safeNext accepts only same-site relative targets: an absolute URL or a
// protocol-relative //host would turn the login redirect into an open one.
func safeNext(next string) bool {
	if !strings.HasPrefix(next, "/") {
		return false
	}
	return !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(accessTokenTTL),
		HTTPOnly: true,
	})
}
