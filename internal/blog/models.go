package blog

import "time"

type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	GroupID        string    `json:"group_id,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	PubDate        time.Time `json:"pub_date"`
}

type Comment struct {
	ID             string    `json:"id"`
	PostID         string    `json:"post_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	PubDate        time.Time `json:"pub_date"`
}

type Group struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Author is the slice of a user record the blog pages need.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}
