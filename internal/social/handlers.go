package social

import (
	"context"
	"errors"

	"github.com/Kelpyre/hw05-final/internal/blog"

	"github.com/gofiber/fiber/v2"
)

// AuthorLookup resolves a profile username to a user record; the blog
// service provides the production implementation.
type AuthorLookup interface {
	AuthorByUsername(ctx context.Context, username string) (blog.Author, error)
}

func RegisterRoutes(app fiber.Router, svc *Service, authors AuthorLookup, requireLogin fiber.Handler) {
	app.Get("/profile/:username/follow/", requireLogin, func(c *fiber.Ctx) error {
		username := c.Params("username")
		author, err := authors.AuthorByUsername(c.Context(), username)
		if err != nil {
			return mapLookupError(err)
		}

		err = svc.Follow(c.Context(), c.Locals("user_id").(string), author.ID)
		if err != nil && !errors.Is(err, ErrSelfFollow) {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		// a self-follow attempt is a no-op but still redirects normally
		return c.Redirect("/profile/"+username+"/", fiber.StatusFound)
	})

	app.Get("/profile/:username/unfollow/", requireLogin, func(c *fiber.Ctx) error {
		username := c.Params("username")
		author, err := authors.AuthorByUsername(c.Context(), username)
		if err != nil {
			return mapLookupError(err)
		}

		if err := svc.Unfollow(c.Context(), c.Locals("user_id").(string), author.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/profile/"+username+"/", fiber.StatusFound)
	})
}

func mapLookupError(err error) error {
	if errors.Is(err, blog.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
