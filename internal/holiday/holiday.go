// Package holiday holds the bundled public holiday table and answers
// membership queries against it.
package holiday

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed holidays.yaml
var bundled []byte

// Year is one year's block of the holiday table.
type Year struct {
	Estimated bool     `yaml:"estimated"`
	Dates     []string `yaml:"dates"`
}

// Calendar is an immutable, indexed holiday table.
type Calendar struct {
	years map[int]Year
	index map[string]struct{}
}

// Parse builds a Calendar from a YAML document keyed by year.
func Parse(data []byte) (*Calendar, error) {
	var years map[int]Year
	if err := yaml.Unmarshal(data, &years); err != nil {
		return nil, fmt.Errorf("parsing holiday table: %w", err)
	}
	c := &Calendar{years: years, index: map[string]struct{}{}}
	for _, y := range years {
		for _, d := range y.Dates {
			c.index[d] = struct{}{}
		}
	}
	return c, nil
}

// Default returns the bundled calendar. It panics if the embedded table is
// malformed, which only a broken build can cause.
func Default() *Calendar {
	c, err := Parse(bundled)
	if err != nil {
		panic(err)
	}
	return c
}

// IsHoliday reports whether date (YYYY-MM-DD) appears in any year's list.
// Estimated years are consulted like any other.
func (c *Calendar) IsHoliday(date string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[date]
	return ok
}

// Years returns the configured years in ascending order.
func (c *Calendar) Years() []int {
	out := make([]int, 0, len(c.years))
	for y := range c.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Dates returns the holiday list for year in table order, and whether the
// year is marked estimated.
func (c *Calendar) Dates(year int) ([]string, bool) {
	y := c.years[year]
	return append([]string(nil), y.Dates...), y.Estimated
}
