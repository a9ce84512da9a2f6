package review

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultBonuses is the catalog offered by the reference deployment.
var DefaultBonuses = []string{
	"Мануальная Терапия",
	"Баночный массаж",
	"Массаж Лица",
	"Массаж ШВЗ",
}

// Catalog is the fixed, ordered list of bonus labels a user may pick from.
type Catalog struct {
	labels []string
}

// NewCatalog validates labels and keeps their order. Blank and duplicate
// labels are rejected.
func NewCatalog(labels ...string) (Catalog, error) {
	if len(labels) == 0 {
		return Catalog{}, fmt.Errorf("review: bonus catalog is empty")
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return Catalog{}, fmt.Errorf("review: blank bonus label")
		}
		if slices.Contains(out, l) {
			return Catalog{}, fmt.Errorf("review: duplicate bonus label %q", l)
		}
		out = append(out, l)
	}
	return Catalog{labels: out}, nil
}

// MustCatalog is NewCatalog for static label sets.
func MustCatalog(labels ...string) Catalog {
	c, err := NewCatalog(labels...)
	if err != nil {
		panic(err)
	}
	return c
}

// Labels returns a copy of the labels in menu order.
func (c Catalog) Labels() []string {
	return slices.Clone(c.labels)
}

// Contains reports whether label is offered.
func (c Catalog) Contains(label string) bool {
	return slices.Contains(c.labels, label)
}

// Len returns the number of offered labels.
func (c Catalog) Len() int {
	return len(c.labels)
}
