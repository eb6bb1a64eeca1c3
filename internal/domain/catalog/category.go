package catalog

import (
	"strings"

	"github.com/tehraja/backend/internal/domain/shared"
)

// Category groups menu items
type Category string

const (
	CategorySignature Category = "signature"
	CategoryMilk      Category = "milk"
	CategoryFruit     Category = "fruit"
	CategoryClassic   Category = "classic"
)

// AllCategories returns the categories in menu display order
func AllCategories() []Category {
	return []Category{CategorySignature, CategoryMilk, CategoryFruit, CategoryClassic}
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategorySignature, CategoryMilk, CategoryFruit, CategoryClassic:
		return true
	}
	return false
}

// ParseCategory parses a category name case-insensitively
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewValidationError("Category must be one of signature, milk, fruit, classic").
			WithDetail("field", "category")
	}
	return c, nil
}
