// Package summary aggregates validation findings across scenes. It is pure
// counting; no checker runs here.
package summary

import (
	"sort"

	"github.com/dshills/railcheck/internal/issue"
)

// Summary accumulates per-run totals. The zero value is ready to use.
type Summary struct {
	Scenes           int
	ScenesWithIssues int
	// ScenesFailed counts scenes that hit a fatal error.
	ScenesFailed int
	Total        int

	byType     map[issue.Type]int
	attributes map[issue.Type]map[string]int
}

// Count is a named tally.
type Count struct {
	Name  string
	Count int
}

// AttributeCounts tallies attribute names for one attribute issue type.
type AttributeCounts struct {
	Type   issue.Type
	Counts []Count
}

// Add records one validated scene.
func (s *Summary) Add(issues []issue.Issue, failed bool) {
	if s.byType == nil {
		s.byType = make(map[issue.Type]int)
		s.attributes = make(map[issue.Type]map[string]int)
	}
	s.Scenes++
	if failed {
		s.ScenesFailed++
	}
	if len(issues) > 0 {
		s.ScenesWithIssues++
	}
	s.Total += len(issues)
	for _, i := range issues {
		s.byType[i.Type]++
		if !i.Type.IsAttribute() || i.Identifiers.Attribute == "" {
			continue
		}
		if s.attributes[i.Type] == nil {
			s.attributes[i.Type] = make(map[string]int)
		}
		s.attributes[i.Type][i.Identifiers.Attribute]++
	}
}

// ByType returns issue counts per type, highest count first and ties by
// type name.
func (s *Summary) ByType() []Count {
	m := make(map[string]int, len(s.byType))
	for t, n := range s.byType {
		m[string(t)] = n
	}
	return sortCounts(m)
}

// Attributes returns attribute tallies for the attribute issue types, by
// type name.
func (s *Summary) Attributes() []AttributeCounts {
	types := make([]issue.Type, 0, len(s.attributes))
	for t := range s.attributes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	out := make([]AttributeCounts, 0, len(types))
	for _, t := range types {
		out = append(out, AttributeCounts{Type: t, Counts: sortCounts(s.attributes[t])})
	}
	return out
}

func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
