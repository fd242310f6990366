// Package catalog models the set of features available to a server
// installation. A Catalog is built once from a Source in three passes
// (descriptions, display names, enables edges) and is read-only afterwards,
// so a single value can be shared by any number of readers.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Sentinel strings rendered when a relationship list is empty.
const (
	NoEnables   = "Does not enable any other features."
	NoEnabledBy = "Not enabled by any other features."
)

// Feature describes one catalog entry. Identity is the ID alone; the
// relationship lists are filled in after the descriptor is created.
type Feature struct {
	ID          string
	DisplayName string
	Description string
	Enables     []string // ids this feature activates, in source order
	EnabledBy   []string // ids that activate this feature, in source order
}

// Name returns the display name, or the id when none was declared.
func (f Feature) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.ID
}

func (f *Feature) clone() Feature {
	c := *f
	c.Enables = append([]string(nil), f.Enables...)
	c.EnabledBy = append([]string(nil), f.EnabledBy...)
	return c
}

// Catalog is an immutable mapping from feature id to descriptor.
type Catalog struct {
	features map[string]*Feature
	order    []string // ids in first-declared order
}

// Build constructs a Catalog from src. It never returns a partially linked
// catalog: any dangling reference aborts the build.
func Build(src Source) (*Catalog, error) {
	c := &Catalog{features: make(map[string]*Feature, len(src.Features))}

	// Pass 1: descriptors from id + description.
	for _, e := range src.Features {
		if e.Description == nil {
			continue
		}
		if _, exists := c.features[e.ID]; exists {
			continue
		}
		c.features[e.ID] = &Feature{ID: e.ID, Description: *e.Description}
		c.order = append(c.order, e.ID)
	}

	// Pass 2: display names.
	for _, e := range src.Features {
		if e.DisplayName == nil {
			continue
		}
		f, ok := c.features[e.ID]
		if !ok {
			return nil, &BuildError{Pass: "displayName", Feature: e.ID, Err: ErrUnknownFeature}
		}
		f.DisplayName = *e.DisplayName
	}

	// Pass 3: enables edges, linked in both directions.
	for _, e := range src.Features {
		for _, ref := range e.Enables {
			from, okFrom := c.features[e.ID]
			to, okTo := c.features[ref]
			if !okFrom || !okTo {
				return nil, &BuildError{Pass: "enables", Feature: e.ID, Ref: ref, Err: ErrDanglingReference}
			}
			from.Enables = append(from.Enables, ref)
			to.EnabledBy = append(to.EnabledBy, e.ID)
		}
	}

	return c, nil
}

// Len returns the number of features in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns all feature ids in first-declared order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Features returns copies of all descriptors in first-declared order.
func (c *Catalog) Features() []Feature {
	out := make([]Feature, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.features[id].clone())
	}
	return out
}

// Lookup returns a copy of the descriptor for id.
func (c *Catalog) Lookup(id string) (Feature, bool) {
	f, ok := c.features[id]
	if !ok {
		return Feature{}, false
	}
	return f.clone(), true
}

// Has reports whether id is a known feature.
func (c *Catalog) Has(id string) bool {
	_, ok := c.features[id]
	return ok
}

// DescribeEnables renders the features id enables, or NoEnables.
func (c *Catalog) DescribeEnables(id string) (string, error) {
	f, ok := c.features[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}
	return joinOr(f.Enables, NoEnables), nil
}

// DescribeEnabledBy renders the features that enable id, or NoEnabledBy.
func (c *Catalog) DescribeEnabledBy(id string) (string, error) {
	f, ok := c.features[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}
	return joinOr(f.EnabledBy, NoEnabledBy), nil
}

func joinOr(ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	return strings.Join(ids, ", ")
}

// Selection is the aggregated relationship view over several features.
type Selection struct {
	IDs       []string
	Enables   []string // deduplicated, sorted
	EnabledBy []string // deduplicated, sorted
}

// DescribeEnables renders the aggregated enables set as "[a, b]" or NoEnables.
func (s Selection) DescribeEnables() string {
	return setOr(s.Enables, NoEnables)
}

// DescribeEnabledBy renders the aggregated enabledBy set as "[a, b]" or NoEnabledBy.
func (s Selection) DescribeEnabledBy() string {
	return setOr(s.EnabledBy, NoEnabledBy)
}

func setOr(ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	return "[" + strings.Join(ids, ", ") + "]"
}

// Aggregate unions the enables and enabledBy lists of every id in ids.
// Unknown ids fail with ErrFeatureNotFound.
func (c *Catalog) Aggregate(ids []string) (Selection, error) {
	enables := make(map[string]bool)
	enabledBy := make(map[string]bool)
	for _, id := range ids {
		f, ok := c.features[id]
		if !ok {
			return Selection{}, fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
		}
		for _, e := range f.Enables {
			enables[e] = true
		}
		for _, e := range f.EnabledBy {
			enabledBy[e] = true
		}
	}
	return Selection{
		IDs:       append([]string(nil), ids...),
		Enables:   sortedKeys(enables),
		EnabledBy: sortedKeys(enabledBy),
	}, nil
}

// Resolve splits declared ids into known catalog features and ids the
// catalog does not describe. Both results keep the order of declared.
func (c *Catalog) Resolve(declared []string) (known []Feature, unknown []string) {
	for _, id := range declared {
		if f, ok := c.features[id]; ok {
			known = append(known, f.clone())
		} else {
			unknown = append(unknown, id)
		}
	}
	return known, unknown
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
