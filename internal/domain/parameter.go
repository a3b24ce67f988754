package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Parameter field bounds.
const (
	MaxParameterNameLen        = 100
	MaxParameterDescriptionLen = 500
	MaxParameterTopics         = 20
	MaxParameterTopicLen       = 100
	MaxParameterCategories     = 20
	MaxCategoryNameLen         = 100
)

// ParameterCategory is a weighted grading category owned by exactly one
// Parameter. Order within the parameter is significant for display.
type ParameterCategory struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Validate returns an empty string when the category is well-formed, or the
// violated constraint's message.
func (c *ParameterCategory) Validate() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(c.Name) > MaxCategoryNameLen {
		return "Category name cannot exceed 100 characters."
	}
	if c.Weight < 0.0 || c.Weight > 1.0 {
		return "Category weight must be between 0.0 and 1.0."
	}
	return ""
}

// Parameter is a staff-defined grading rubric bound to a thread: required
// activity counts, suggested topics, and an ordered list of weighted
// categories.
type Parameter struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Active          bool                `json:"active"`
	CreatedBy       string              `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
	RequiredPosts   int                 `json:"required_posts"`
	RequiredReplies int                 `json:"required_replies"`
	Topics          []string            `json:"topics,omitempty"`
	ThreadID        string              `json:"thread_id"`
	Categories      []ParameterCategory `json:"categories"`
}

// Validate returns an empty string when the parameter and every category it
// owns are well-formed. Field-level constraints are checked first, then the
// structural ones, and a single invalid category fails the whole parameter.
func (p *Parameter) Validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Name is required."
	}
	if strings.TrimSpace(p.CreatedBy) == "" {
		return "Creator is required."
	}
	if utf8.RuneCountInString(p.Name) > MaxParameterNameLen {
		return "Name cannot exceed 100 characters."
	}
	if utf8.RuneCountInString(p.Description) > MaxParameterDescriptionLen {
		return "Description cannot exceed 500 characters."
	}
	if p.RequiredPosts < 0 {
		return "Required posts cannot be negative."
	}
	if p.RequiredReplies < 0 {
		return "Required replies cannot be negative."
	}
	if len(p.Topics) > MaxParameterTopics {
		return "A parameter cannot have more than 20 topics."
	}
	for _, topic := range p.Topics {
		if strings.TrimSpace(topic) == "" {
			return "Topics cannot be blank."
		}
		if utf8.RuneCountInString(topic) > MaxParameterTopicLen {
			return "Topics cannot exceed 100 characters."
		}
	}
	if strings.TrimSpace(p.ThreadID) == "" {
		return "Thread is required."
	}
	if len(p.Categories) == 0 {
		return "At least one category is required."
	}
	if len(p.Categories) > MaxParameterCategories {
		return "A parameter cannot have more than 20 categories."
	}
	for i := range p.Categories {
		if msg := p.Categories[i].Validate(); msg != "" {
			return msg
		}
	}
	return ""
}
