package social

import (
	"context"
	"errors"

	"github.com/Kelpyre/hw05-final/internal/db"
)

// ErrSelfFollow marks a rejected attempt to follow oneself; no edge is
// written and callers still answer with a normal redirect.
var ErrSelfFollow = errors.New("cannot follow yourself")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Follow(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, authorID)
	return err
}

func (s *Service) Unfollow(ctx context.Context, userID, authorID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follows WHERE user_id=$1 AND author_id=$2
	`, userID, authorID)
	return err
}

func (s *Service) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE user_id=$1 AND author_id=$2)
	`, userID, authorID).Scan(&following)
	return following, err
}
