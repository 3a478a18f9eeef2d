package workspace

import (
	"fmt"
	"strings"
)

// Category is one of the three reflection columns.
type Category string

const (
	Form     Category = "form"
	Function Category = "function"
	Feeling  Category = "feeling"
)

// Categories lists the categories in column order.
var Categories = []Category{Form, Function, Feeling}

// MaxPerCategory caps how many entries a single category may hold.
const MaxPerCategory = 3

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case Form:
		return Form, nil
	case Function:
		return Function, nil
	case Feeling:
		return Feeling, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) Label() string {
	switch c {
	case Form:
		return "Form"
	case Function:
		return "Function"
	case Feeling:
		return "Feeling"
	}
	return string(c)
}

// Column is the zero-based column the category is laid out in.
func (c Category) Column() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// Sides returns the handle sides an entry of this category carries.
func (c Category) Sides() []Side {
	switch c {
	case Form:
		return []Side{Right}
	case Function:
		return []Side{Left, Right}
	case Feeling:
		return []Side{Left}
	}
	return nil
}

func (c Category) HasSide(s Side) bool {
	for _, side := range c.Sides() {
		if side == s {
			return true
		}
	}
	return false
}

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Handle is a drag anchor on one side of an entry.
type Handle struct {
	EntryID string
	Side    Side
}

func (h Handle) String() string {
	return h.EntryID + ":" + h.Side.String()
}
