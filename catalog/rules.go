package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/video-catalog-backend/config"
)

const (
	UncategorizedLabel = "未分類"
	DefaultRating      = 3
)

var validate = validator.New()

// Rules are the per-field limits applied to video input.
type Rules struct {
	// Categories restricts category to a fixed label set. Empty allows any label
	// within MaxCategoryLength.
	Categories        []string
	Uncategorized     string
	MaxTagLength      int
	MaxCategoryLength int
	MaxTextLength     int
}

func DefaultRules() Rules {
	return Rules{
		Uncategorized:     UncategorizedLabel,
		MaxTagLength:      10,
		MaxCategoryLength: 10,
		MaxTextLength:     2000,
	}
}

func NewRules(c config.Catalog) Rules {
	r := DefaultRules()
	r.Categories = slices.Clone(c.Categories)
	if c.UncategorizedLabel != "" {
		r.Uncategorized = c.UncategorizedLabel
	}
	if c.MaxTagLength > 0 {
		r.MaxTagLength = c.MaxTagLength
	}
	if c.MaxCategoryLength > 0 {
		r.MaxCategoryLength = c.MaxCategoryLength
	}
	if c.MaxTextLength > 0 {
		r.MaxTextLength = c.MaxTextLength
	}
	return r
}

func (r Rules) checkRequired(value, name string) string {
	if err := validate.Var(value, "required"); err != nil {
		return fmt.Sprintf("%s is required", name)
	}
	return ""
}

func (r Rules) checkTags(tags []string) string {
	if err := validate.Var(tags, fmt.Sprintf("dive,max=%d", r.MaxTagLength)); err != nil {
		return fmt.Sprintf("each tag must be at most %d characters", r.MaxTagLength)
	}
	return ""
}

func (r Rules) checkCategory(category string) string {
	if err := validate.Var(category, fmt.Sprintf("max=%d", r.MaxCategoryLength)); err != nil {
		return fmt.Sprintf("category must be at most %d characters", r.MaxCategoryLength)
	}
	if len(r.Categories) > 0 && category != r.Uncategorized && !slices.Contains(r.Categories, category) {
		return fmt.Sprintf("category must be one of: %s", strings.Join(r.Categories, ", "))
	}
	return ""
}

func (r Rules) checkText(value, name string) string {
	if err := validate.Var(value, fmt.Sprintf("max=%d", r.MaxTextLength)); err != nil {
		return fmt.Sprintf("%s must be at most %d characters", name, r.MaxTextLength)
	}
	return ""
}

func (r Rules) checkRating(value float64) string {
	if err := validate.Var(value, "gte=1,lte=5"); err != nil {
		return "rating must be between 1 and 5"
	}
	return ""
}
