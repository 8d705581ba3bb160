package blog

import (
	"context"
	"encoding/json"

	"github.com/Kelpyre/hw05-final/internal/cache"
	"github.com/Kelpyre/hw05-final/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

const titleSnippetLen = 30

// FollowChecker reports whether a viewer already follows an author. The
// social package provides the production implementation.
type FollowChecker interface {
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
}

// Notifier fans a published post out to live subscribers of its author.
type Notifier interface {
	Broadcast(author string, payload []byte)
}

func RegisterRoutes(app fiber.Router, svc *Service, follows FollowChecker, pageCache *cache.PageCache, notifier Notifier, requireLogin, currentUser fiber.Handler, pageSize int) {
	app.Get("/", func(c *fiber.Ctx) error {
		if body, ok := pageCache.Get(c.Context()); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}

		posts, err := svc.ListAll(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		page := pagination.Paginate(posts, pagination.Number(c.Query("page")), pageSize)

		body, err := json.Marshal(fiber.Map{
			"title":       "Latest updates",
			"description": "Home page",
			"page":        page,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		pageCache.Set(c.Context(), body)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	})

	app.Get("/group/:slug/", func(c *fiber.Ctx) error {
		group, err := svc.GroupBySlug(c.Context(), c.Params("slug"))
		if err != nil {
			return mapServiceError(err, "group not found")
		}
		posts, err := svc.ListByGroup(c.Context(), group.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		page := pagination.Paginate(posts, pagination.Number(c.Query("page")), pageSize)
		return c.JSON(fiber.Map{
			"title":       group.Title,
			"description": group.Description,
			"group":       group,
			"page":        page,
		})
	})

	app.Post("/group/", requireLogin, func(c *fiber.Ctx) error {
		var form GroupForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"form": form, "errors": errs})
		}
		group, err := svc.CreateGroup(c.Context(), form)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(group)
	})

	app.Get("/profile/:username/", currentUser, func(c *fiber.Ctx) error {
		author, err := svc.AuthorByUsername(c.Context(), c.Params("username"))
		if err != nil {
			return mapServiceError(err, "user not found")
		}
		posts, err := svc.ListByAuthor(c.Context(), author.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		page := pagination.Paginate(posts, pagination.Number(c.Query("page")), pageSize)

		following := false
		if viewerID, ok := c.Locals("user_id").(string); ok && viewerID != "" && viewerID != author.ID {
			following, err = follows.IsFollowing(c.Context(), viewerID, author.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}

		return c.JSON(fiber.Map{
			"title":       "Profile of " + author.Username,
			"author":      author,
			"posts_count": len(posts),
			"following":   following,
			"page":        page,
		})
	})

	app.Get("/posts/:id/", func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return mapServiceError(err, "post not found")
		}
		comments, err := svc.Comments(c.Context(), post.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		postsCount, err := svc.CountByAuthor(c.Context(), post.AuthorID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"title":       "Post " + snippet(post.Text),
			"post":        post,
			"posts_count": postsCount,
			"comments":    comments,
			"form":        CommentForm{},
		})
	})

	app.Get("/create/", requireLogin, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"title": "Add post",
			"form":  PostForm{},
		})
	})

	app.Post("/create/", requireLogin, func(c *fiber.Ctx) error {
		var form PostForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"title": "Add post", "form": form, "errors": errs})
		}

		username, _ := c.Locals("username").(string)
		post, err := svc.Create(c.Context(), c.Locals("user_id").(string), form)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		post.AuthorUsername = username

		if notifier != nil {
			if payload, err := json.Marshal(fiber.Map{
				"post_id": post.ID,
				"author":  username,
				"text":    post.Text,
			}); err == nil {
				notifier.Broadcast(username, payload)
			}
		}
		return c.Redirect("/profile/"+username+"/", fiber.StatusFound)
	})

	app.Get("/posts/:id/edit/", requireLogin, func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return mapServiceError(err, "post not found")
		}
		if post.AuthorID != c.Locals("user_id").(string) {
			return c.Redirect("/posts/"+post.ID+"/", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"title":   "Edit post",
			"is_edit": true,
			"post_id": post.ID,
			"form":    PostForm{Text: post.Text, GroupID: post.GroupID, ImageURL: post.ImageURL},
		})
	})

	app.Post("/posts/:id/edit/", requireLogin, func(c *fiber.Ctx) error {
		postID := c.Params("id")
		var form PostForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"title": "Edit post", "is_edit": true, "post_id": postID, "form": form, "errors": errs})
		}

		_, err := svc.Update(c.Context(), c.Locals("user_id").(string), postID, form)
		switch {
		case err == ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		case err == ErrNotAuthor:
			// unauthorized edits bounce to the detail page, not an error
			return c.Redirect("/posts/"+postID+"/", fiber.StatusFound)
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/posts/"+postID+"/", fiber.StatusFound)
	})

	app.Post("/posts/:id/comment/", requireLogin, func(c *fiber.Ctx) error {
		postID := c.Params("id")
		var form CommentForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if errs := form.Validate(); len(errs) > 0 {
			// nothing persisted; the redirect carries the failed field
			return c.Redirect("/posts/"+postID+"/?error=text", fiber.StatusFound)
		}

		_, err := svc.AddComment(c.Context(), postID, c.Locals("user_id").(string), form.Text)
		if err != nil {
			return mapServiceError(err, "post not found")
		}
		return c.Redirect("/posts/"+postID+"/", fiber.StatusFound)
	})

	app.Get("/follow/", requireLogin, func(c *fiber.Ctx) error {
		posts, err := svc.ListFeed(c.Context(), c.Locals("user_id").(string))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		page := pagination.Paginate(posts, pagination.Number(c.Query("page")), pageSize)
		return c.JSON(fiber.Map{
			"title": "Authors you follow",
			"page":  page,
		})
	})
}

func mapServiceError(err error, notFoundMsg string) error {
	if err == ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= titleSnippetLen {
		return text
	}
	return string(runes[:titleSnippetLen])
}
