package filters

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-video/catalog-backend/internal/criteria"
)

func TestValuesFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Values
	}{
		{
			name:  "empty query yields defaults",
			query: "",
			want:  DefaultValues(),
		},
		{
			name:  "all params present",
			query: "search=Cats&tags=pets,funny&sort=oldest",
			want:  Values{Search: "Cats", Sort: criteria.SortOldest, Tags: []string{"pets", "funny"}},
		},
		{
			name:  "bad sort falls back",
			query: "sort=bogus",
			want:  DefaultValues(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ValuesFromQuery(q))
		})
	}
}

func TestValuesQueryOmitsDefaults(t *testing.T) {
	assert.Empty(t, DefaultValues().Query().Encode(), "default view must serialize to a clean URL")

	q := Values{Search: "  ", Sort: criteria.SortNewest, Tags: []string{}}.Query()
	assert.Empty(t, q.Encode(), "whitespace-only search is omitted")
}

func TestValuesQueryTagsSortedNormalized(t *testing.T) {
	q := Values{Sort: criteria.SortOldest, Tags: []string{"Zebra", " apple "}}.Query()
	assert.Equal(t, "apple,zebra", q.Get(criteria.ParamTags))
	assert.Equal(t, "oldest", q.Get(criteria.ParamSort))
	assert.Empty(t, q.Get(criteria.ParamSearch))
}

func TestValuesQueryRoundTrip(t *testing.T) {
	orig := Values{Search: "go tutorial", Sort: criteria.SortOldest, Tags: []string{"go", "tutorial"}}
	got := ValuesFromQuery(orig.Query())
	assert.Equal(t, orig.Search, got.Search)
	assert.Equal(t, orig.Sort, got.Sort)
	assert.ElementsMatch(t, orig.Tags, got.Tags)
}

func TestFormDirtyAndReset(t *testing.T) {
	q, _ := url.ParseQuery("search=initial")
	f := NewForm(q)
	assert.False(t, f.Dirty())

	f.SetSearch("changed")
	assert.True(t, f.Dirty())

	f.SetSort(criteria.SortOldest)
	f.SetTags([]string{"go"})

	f.Reset()
	v := f.Values()
	assert.Equal(t, DefaultValues(), v)
	// reset goes to defaults, not initial values, so the form stays dirty
	// relative to a URL that carried a search
	assert.True(t, f.Dirty())
}

func TestFormSetSortRejectsUnknown(t *testing.T) {
	f := NewForm(url.Values{})
	f.SetSort("trending")
	assert.Equal(t, criteria.DefaultSort, f.Values().Sort)
}
