package regions

import (
	"fmt"
	"sort"
	"strings"
)

// Region pairs a canonical English region name with its localized display name
type Region struct {
	Name    string `yaml:"name" json:"name"`
	Display string `yaml:"display" json:"display"`
}

// String renders the region the way the listing shows it, e.g. "日本 (Japan)"
func (r Region) String() string {
	if r.Display == "" || r.Display == r.Name {
		return r.Name
	}
	return fmt.Sprintf("%s (%s)", r.Display, r.Name)
}

var defaultRegions = []Region{
	{Name: "Africa", Display: "アフリカ"},
	{Name: "Asia", Display: "アジア"},
	{Name: "Europe", Display: "ヨーロッパ"},
	{Name: "Japan", Display: "日本"},
	{Name: "Middle East", Display: "中東"},
	{Name: "North America", Display: "北アメリカ"},
	{Name: "Oceania", Display: "オセアニア"},
	{Name: "South America", Display: "南アメリカ"},
}

// Table is an ordered, read-only lookup from region name to display name.
// It is presentational only and never used to validate predictions.
type Table struct {
	regions []Region
	index   map[string]int
}

// Default returns the built-in region table
func Default() *Table {
	return New(defaultRegions)
}

// New builds a table preserving the given order. Later duplicates replace
// the display name of earlier entries.
func New(regions []Region) *Table {
	t := &Table{
		regions: make([]Region, 0, len(regions)),
		index:   make(map[string]int, len(regions)),
	}
	for _, r := range regions {
		t.put(r)
	}
	return t
}

func (t *Table) put(r Region) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return
	}
	r.Name = name
	if i, ok := t.index[name]; ok {
		t.regions[i].Display = r.Display
		return
	}
	t.index[name] = len(t.regions)
	t.regions = append(t.regions, r)
}

// WithOverrides returns a copy of the table with the given display names applied.
// Known regions keep their position; new regions are appended in name order.
func (t *Table) WithOverrides(overrides map[string]string) *Table {
	out := New(t.regions)
	if len(overrides) == 0 {
		return out
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		out.put(Region{Name: name, Display: overrides[name]})
	}
	return out
}

// Lookup returns the display name for a region
func (t *Table) Lookup(name string) (string, bool) {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	return t.regions[i].Display, true
}

// Label renders a predicted label with its display name when the table knows it.
// Unknown labels are returned unchanged.
func (t *Table) Label(name string) string {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return name
	}
	return t.regions[i].String()
}

// All returns the regions in table order
func (t *Table) All() []Region {
	out := make([]Region, len(t.regions))
	copy(out, t.regions)
	return out
}

// Len returns the number of regions
func (t *Table) Len() int {
	return len(t.regions)
}

// Names returns the canonical region names in table order
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.regions))
	for _, r := range t.regions {
		names = append(names, r.Name)
	}
	return names
}
