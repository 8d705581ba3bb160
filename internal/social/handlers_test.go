package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kelpyre/hw05-final/internal/blog"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

type stubAuthors map[string]blog.Author

func (s stubAuthors) AuthorByUsername(_ context.Context, username string) (blog.Author, error) {
	author, ok := s[username]
	if !ok {
		return blog.Author{}, blog.ErrNotFound
	}
	return author, nil
}

func asUser(userID, username string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("username", username)
		return c.Next()
	}
}

func newSocialApp(mock pgxmock.PgxPoolIface, authors AuthorLookup, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, NewService(mock), authors, guard)
	return app
}

func TestFollowHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO follows`).
		WithArgs("user-2", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	authors := stubAuthors{"leo": {ID: "user-1", Username: "leo"}}
	app := newSocialApp(mock, authors, asUser("user-2", "anna"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/leo/follow/", nil))
	if err != nil || resp.StatusCode != http.StatusFound {
		t.Fatalf("follow status: %v", err)
	}
	if loc := resp.Header.Get("Location"); loc != "/profile/leo/" {
		t.Fatalf("unexpected redirect: %q", loc)
	}
}

func TestFollowSelfStillRedirects(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	authors := stubAuthors{"leo": {ID: "user-1", Username: "leo"}}
	app := newSocialApp(mock, authors, asUser("user-1", "leo"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/leo/follow/", nil))
	if err != nil || resp.StatusCode != http.StatusFound {
		t.Fatalf("self-follow status: %v", err)
	}
	if loc := resp.Header.Get("Location"); loc != "/profile/leo/" {
		t.Fatalf("unexpected redirect: %q", loc)
	}

	// no follow edge was written
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	app := newSocialApp(nil, stubAuthors{}, asUser("user-2", "anna"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/ghost/follow/", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404: %v %d", err, resp.StatusCode)
	}
}

func TestUnfollowHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM follows`).
		WithArgs("user-2", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	authors := stubAuthors{"leo": {ID: "user-1", Username: "leo"}}
	app := newSocialApp(mock, authors, asUser("user-2", "anna"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/leo/unfollow/", nil))
	if err != nil || resp.StatusCode != http.StatusFound {
		t.Fatalf("unfollow status: %v", err)
	}
	if loc := resp.Header.Get("Location"); loc != "/profile/leo/" {
		t.Fatalf("unexpected redirect: %q", loc)
	}
}
