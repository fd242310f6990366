package catalog

import (
	"fmt"
	"sort"
)

// Closure returns every feature reachable from id over enables edges, that
// is everything the server activates when id is declared. The result is
// sorted and never contains id itself, even when enables edges form a cycle.
func (c *Catalog) Closure(id string) ([]string, error) {
	return c.reach(id, func(f *Feature) []string { return f.Enables })
}

// ClosureBy returns every feature that transitively enables id.
func (c *Catalog) ClosureBy(id string) ([]string, error) {
	return c.reach(id, func(f *Feature) []string { return f.EnabledBy })
}

// reach performs a BFS from id following next, collecting visited ids.
func (c *Catalog) reach(id string, next func(*Feature) []string) ([]string, error) {
	start, ok := c.features[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotFound, id)
	}
	visited := map[string]bool{id: true}
	queue := []*Feature{start}
	var result []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ref := range next(cur) {
			if visited[ref] {
				continue
			}
			visited[ref] = true
			result = append(result, ref)
			if f, ok := c.features[ref]; ok {
				queue = append(queue, f)
			}
		}
	}
	sort.Strings(result)
	return result, nil
}
