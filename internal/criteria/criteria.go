// Package criteria defines the catalog's list-query criteria and
// create-record input, together with the normalization rules that make
// criteria usable as cache keys.
package criteria

import (
	"net/url"
	"sort"
	"strings"
)

// SortOrder selects the created-at ordering of a list query.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"

	// DefaultSort is applied when the sort value is absent or unrecognized.
	DefaultSort = SortNewest
)

// URL query parameter names. This is the wire contract for shareable state.
const (
	ParamSearch = "search"
	ParamTags   = "tags"
	ParamSort   = "sort"
)

// CacheNamespace prefixes every list-query cache key.
const CacheNamespace = "videos"

// ListCriteria describes one catalog list query. The zero value is the
// default view (newest, no search, no tag filter) after Normalize.
type ListCriteria struct {
	OrderBy     SortOrder `json:"orderBy"`
	SearchQuery string    `json:"searchQuery"`
	Tags        []string  `json:"tags"`
}

// NormalizeQuery trims surrounding whitespace and lowercases a free-text
// search string. Idempotent: NormalizeQuery(NormalizeQuery(s)) == NormalizeQuery(s).
func NormalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTag trims and lowercases a single tag name.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseSort maps a raw sort value to a SortOrder, falling back to DefaultSort
// for anything unrecognized.
func ParseSort(s string) SortOrder {
	switch SortOrder(strings.TrimSpace(s)) {
	case SortNewest:
		return SortNewest
	case SortOldest:
		return SortOldest
	default:
		return DefaultSort
	}
}

// Normalize returns a fully normalized copy: defaulted sort order, trimmed
// and lowercased search, each tag trimmed and lowercased. Tag order is
// preserved; callers that need order independence use CacheKey.
func (c ListCriteria) Normalize() ListCriteria {
	out := ListCriteria{
		OrderBy:     ParseSort(string(c.OrderBy)),
		SearchQuery: NormalizeQuery(c.SearchQuery),
		Tags:        make([]string, 0, len(c.Tags)),
	}
	for _, t := range c.Tags {
		out.Tags = append(out.Tags, NormalizeTag(t))
	}
	return out
}

// CacheKey builds the canonical cache key for this criteria. Criteria that
// are equal after normalization (tag order and case ignored) produce
// byte-equal keys. The receiver's tag order is left untouched.
func (c ListCriteria) CacheKey() string {
	n := c.Normalize()
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	sort.Strings(tags)
	return CacheNamespace + "|" + string(n.OrderBy) + "|" + n.SearchQuery + "|" + strings.Join(tags, ",")
}

// Values serializes normalized criteria to URL query values, omitting any
// parameter equal to its default. Inverse of ParseListValues.
func (c ListCriteria) Values() url.Values {
	n := c.Normalize()
	v := url.Values{}
	if n.SearchQuery != "" {
		v.Set(ParamSearch, n.SearchQuery)
	}
	if len(n.Tags) > 0 {
		tags := make([]string, len(n.Tags))
		copy(tags, n.Tags)
		sort.Strings(tags)
		v.Set(ParamTags, strings.Join(tags, ","))
	}
	if n.OrderBy != DefaultSort {
		v.Set(ParamSort, string(n.OrderBy))
	}
	return v
}

// ParseListValues reads list criteria from URL query values and normalizes
// them. Absent parameters fall back to defaults; blank entries in the
// comma-joined tag list are dropped.
func ParseListValues(v url.Values) ListCriteria {
	c := ListCriteria{
		OrderBy:     SortOrder(v.Get(ParamSort)),
		SearchQuery: v.Get(ParamSearch),
	}
	if raw := v.Get(ParamTags); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Tags = append(c.Tags, t)
			}
		}
	}
	return c.Normalize()
}
