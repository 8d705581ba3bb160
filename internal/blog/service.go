package blog

import (
	"context"
	"errors"

	"github.com/Kelpyre/hw05-final/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotAuthor = errors.New("not the author")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

const postColumns = `p.id, p.author_id, u.username, p.text, COALESCE(p.group_id,''), COALESCE(p.image_url,''), p.pub_date`

func (s *Service) Create(ctx context.Context, authorID string, form PostForm) (Post, error) {
	post := Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Text:     form.Text,
		GroupID:  form.GroupID,
		ImageURL: form.ImageURL,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, text, group_id, image_url)
		VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''))
		RETURNING pub_date
	`, post.ID, post.AuthorID, post.Text, post.GroupID, post.ImageURL)
	if err := row.Scan(&post.PubDate); err != nil {
		return Post{}, err
	}
	return post, nil
}

// Update overwrites the mutable fields of a post in place. Author and
// pub_date are preserved; only the author may edit.
func (s *Service) Update(ctx context.Context, editorID, postID string, form PostForm) (Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return Post{}, err
	}
	if post.AuthorID != editorID {
		return Post{}, ErrNotAuthor
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	post.ImageURL = form.ImageURL

	_, err = s.db.Exec(ctx, `
		UPDATE posts
		SET text=$2, group_id=NULLIF($3,''), image_url=NULLIF($4,'')
		WHERE id=$1
	`, post.ID, post.Text, post.GroupID, post.ImageURL)
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id=$1
	`, id)
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Text, &p.GroupID, &p.ImageURL, &p.PubDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.pub_date DESC
	`)
}

func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.group_id=$1
		ORDER BY p.pub_date DESC
	`, groupID)
}

func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.author_id=$1
		ORDER BY p.pub_date DESC
	`, authorID)
}

// ListFeed returns the posts of every author the user follows, newest first.
func (s *Service) ListFeed(ctx context.Context, userID string) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.author_id IN (SELECT author_id FROM follows WHERE user_id=$1)
		ORDER BY p.pub_date DESC
	`, userID)
}

func (s *Service) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts WHERE author_id=$1
	`, authorID).Scan(&count)
	return count, err
}

func (s *Service) listPosts(ctx context.Context, sql string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Text, &p.GroupID, &p.ImageURL, &p.PubDate); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AddComment checks the post exists first so an unknown id surfaces as
// ErrNotFound rather than a foreign-key failure.
func (s *Service) AddComment(ctx context.Context, postID, authorID, text string) (Comment, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)
	`, postID).Scan(&exists); err != nil {
		return Comment{}, err
	}
	if !exists {
		return Comment{}, ErrNotFound
	}

	comment := Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, author_id, text)
		VALUES ($1,$2,$3,$4)
		RETURNING pub_date
	`, comment.ID, comment.PostID, comment.AuthorID, comment.Text)
	if err := row.Scan(&comment.PubDate); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *Service) Comments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.pub_date
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id=$1
		ORDER BY c.pub_date
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.AuthorUsername, &cm.Text, &cm.PubDate); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}

func (s *Service) GroupBySlug(ctx context.Context, slug string) (Group, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, slug, description FROM groups WHERE slug=$1
	`, slug)
	var g Group
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

func (s *Service) CreateGroup(ctx context.Context, form GroupForm) (Group, error) {
	group := Group{
		ID:          uuid.NewString(),
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO groups (id, title, slug, description)
		VALUES ($1,$2,$3,$4)
	`, group.ID, group.Title, group.Slug, group.Description)
	if err != nil {
		return Group{}, err
	}
	return group, nil
}

func (s *Service) AuthorByUsername(ctx context.Context, username string) (Author, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, full_name FROM users WHERE username=$1
	`, username)
	var a Author
	err := row.Scan(&a.ID, &a.Username, &a.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Author{}, ErrNotFound
	}
	if err != nil {
		return Author{}, err
	}
	return a, nil
}
