package blog

import "strings"

const maxTextLen = 10000

// PostForm carries the user-submitted fields of a post. Author and pub_date
// are never part of the form: they are assigned server-side.
type PostForm struct {
	Text     string `json:"text" form:"text"`
	GroupID  string `json:"group_id" form:"group_id"`
	ImageURL string `json:"image_url" form:"image_url"`
}

// Validate returns field-level errors; an empty map means the form is valid.
func (f PostForm) Validate() map[string]string {
	errs := map[string]string{}
	text := strings.TrimSpace(f.Text)
	if text == "" {
		errs["text"] = "this field is required"
	} else if len(f.Text) > maxTextLen {
		errs["text"] = "text is too long"
	}
	if f.ImageURL != "" && !strings.HasPrefix(f.ImageURL, "http://") && !strings.HasPrefix(f.ImageURL, "https://") {
		errs["image_url"] = "must be an http(s) URL"
	}
	return errs
}

type CommentForm struct {
	Text string `json:"text" form:"text"`
}

func (f CommentForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "this field is required"
	} else if len(f.Text) > maxTextLen {
		errs["text"] = "text is too long"
	}
	return errs
}

type GroupForm struct {
	Title       string `json:"title" form:"title"`
	Slug        string `json:"slug" form:"slug"`
	Description string `json:"description" form:"description"`
}

func (f GroupForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "this field is required"
	}
	slug := strings.TrimSpace(f.Slug)
	if slug == "" {
		errs["slug"] = "this field is required"
	} else if strings.ContainsAny(slug, " /") {
		errs["slug"] = "must not contain spaces or slashes"
	}
	return errs
}
