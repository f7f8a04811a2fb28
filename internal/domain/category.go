package domain

import (
	"strings"
	"time"
)

type Category struct {
	Record
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CategoryInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"required,hexcolor"`
}

func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
}

// DefaultCategories are seeded for a user whose category list is empty.
var DefaultCategories = []CategoryInput{
	{Name: "Work", Color: "#3B82F6"},
	{Name: "Personal", Color: "#10B981"},
	{Name: "Learning", Color: "#8B5CF6"},
	{Name: "Health", Color: "#EF4444"},
	{Name: "Finance", Color: "#F59E0B"},
	{Name: "Shopping", Color: "#EC4899"},
}

func NewLocalCategory(id string, in CategoryInput, now time.Time) Category {
	c := Category{Record: NewLocalRecord(id, now)}
	c.Apply(in, now)
	return c
}

func (c *Category) Apply(in CategoryInput, _ time.Time) {
	c.Name = in.Name
	c.Color = in.Color
}
