package models

import (
	"fmt"
	"strings"
)

// Category is a named grouping of envelopes. It carries no money semantics.
type Category struct {
	DefaultModel
	Owned
	Name  string `json:"name" example:"Saving"` // Name of the category
	Index int    `json:"index" example:"1"`     // Display position
}

func (c Category) Self() string {
	return "Category"
}

func (c Category) Collection() string {
	return CollectionCategories
}

func (c *Category) Normalize() {
	c.DefaultModel.Normalize()
	c.Name = strings.TrimSpace(c.Name)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category: %w", ErrNameEmpty)
	}

	return nil
}
