// Package filters keeps the catalog filter state (search text, sort order,
// tag selection) consistent between an editable form model and the
// navigable URL, debouncing free-text input before it commits.
package filters

import (
	"net/url"
	"sort"
	"strings"

	"github.com/aura-video/catalog-backend/internal/criteria"
)

// Values is one snapshot of the filter form.
type Values struct {
	Search string
	Sort   criteria.SortOrder
	Tags   []string
}

// DefaultValues is the state of an untouched form.
func DefaultValues() Values {
	return Values{Search: "", Sort: criteria.DefaultSort, Tags: []string{}}
}

// ValuesFromQuery reads form state from URL query values, falling back to
// defaults for absent parameters. The search text is kept raw so the user
// sees exactly what the URL carried.
func ValuesFromQuery(q url.Values) Values {
	v := Values{
		Search: q.Get(criteria.ParamSearch),
		Sort:   criteria.ParseSort(q.Get(criteria.ParamSort)),
		Tags:   []string{},
	}
	if raw := q.Get(criteria.ParamTags); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				v.Tags = append(v.Tags, t)
			}
		}
	}
	return v
}

// Criteria converts the snapshot into normalized list criteria.
func (v Values) Criteria() criteria.ListCriteria {
	return criteria.ListCriteria{
		OrderBy:     v.Sort,
		SearchQuery: v.Search,
		Tags:        v.Tags,
	}.Normalize()
}

// Query serializes the snapshot to URL query values. A parameter equal to
// its default is omitted entirely so the default view keeps a clean URL.
// Tags are serialized as a comma-joined, sorted list of normalized names.
func (v Values) Query() url.Values {
	q := url.Values{}
	if strings.TrimSpace(v.Search) != "" {
		q.Set(criteria.ParamSearch, v.Search)
	}
	if len(v.Tags) > 0 {
		tags := make([]string, 0, len(v.Tags))
		for _, t := range v.Tags {
			if t = criteria.NormalizeTag(t); t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			sort.Strings(tags)
			q.Set(criteria.ParamTags, strings.Join(tags, ","))
		}
	}
	if v.Sort != criteria.DefaultSort {
		q.Set(criteria.ParamSort, string(v.Sort))
	}
	return q
}

// Form is the editable filter state with a dirty flag relative to its
// initial values. Transitions are pure field updates; mirroring to the URL
// is the Synchronizer's job.
type Form struct {
	initial Values
	values  Values
}

// NewForm creates a form whose initial state is read from URL query values.
func NewForm(q url.Values) *Form {
	v := ValuesFromQuery(q)
	return &Form{initial: v.clone(), values: v.clone()}
}

// Values returns a copy of the current snapshot.
func (f *Form) Values() Values { return f.values.clone() }

// Dirty reports whether the form differs from its initial values.
func (f *Form) Dirty() bool { return !f.values.equal(f.initial) }

// SetSearch updates the search text.
func (f *Form) SetSearch(s string) { f.values.Search = s }

// SetSort updates the sort order, defaulting anything unrecognized.
func (f *Form) SetSort(s criteria.SortOrder) {
	f.values.Sort = criteria.ParseSort(string(s))
}

// SetTags replaces the tag selection.
func (f *Form) SetTags(tags []string) {
	f.values.Tags = append([]string(nil), tags...)
	if f.values.Tags == nil {
		f.values.Tags = []string{}
	}
}

// Reset restores all fields to their defaults as one transition.
func (f *Form) Reset() { f.values = DefaultValues() }

func (v Values) clone() Values {
	out := v
	out.Tags = append([]string{}, v.Tags...)
	return out
}

func (v Values) equal(o Values) bool {
	if v.Search != o.Search || v.Sort != o.Sort || len(v.Tags) != len(o.Tags) {
		return false
	}
	for i := range v.Tags {
		if v.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}
