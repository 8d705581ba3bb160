package storage

import (
	"context"

	"github.com/Kelpyre/hw05-final/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveObject(ctx context.Context, userID, url, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, kind)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RegisterRoutes exposes the upload endpoint the post form's image field
// points at. The owner is taken from the session, never from the body.
func RegisterRoutes(r fiber.Router, svc *Service, requireLogin fiber.Handler) {
	r.Post("/upload/", requireLogin, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name" form:"file_name"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "upload"
		}

		userID, _ := c.Locals("user_id").(string)
		url := "https://storage.example/" + body.FileName
		id, err := svc.SaveObject(c.Context(), userID, url, "image")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"id":  id,
			"url": url,
		})
	})
}
