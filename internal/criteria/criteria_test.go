package criteria

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQueryIdempotent(t *testing.T) {
	inputs := []string{"", "  Hello World  ", "TEST", "already normal", "\tMiXeD Case\n"}
	for _, in := range inputs {
		once := NormalizeQuery(in)
		assert.Equal(t, once, NormalizeQuery(once), "normalize twice must equal normalize once for %q", in)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListCriteria
		want ListCriteria
	}{
		{
			name: "zero value gets defaults",
			in:   ListCriteria{},
			want: ListCriteria{OrderBy: SortNewest, SearchQuery: "", Tags: []string{}},
		},
		{
			name: "unknown sort falls back to newest",
			in:   ListCriteria{OrderBy: "popular"},
			want: ListCriteria{OrderBy: SortNewest, SearchQuery: "", Tags: []string{}},
		},
		{
			name: "search trimmed and lowercased",
			in:   ListCriteria{OrderBy: SortOldest, SearchQuery: "  My QUERY "},
			want: ListCriteria{OrderBy: SortOldest, SearchQuery: "my query", Tags: []string{}},
		},
		{
			name: "tags normalized in place, order kept",
			in:   ListCriteria{Tags: []string{" Go ", "TUTORIAL"}},
			want: ListCriteria{OrderBy: SortNewest, Tags: []string{"go", "tutorial"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestCacheKeySetEquality(t *testing.T) {
	a := ListCriteria{OrderBy: SortNewest, SearchQuery: "go", Tags: []string{"a", "b"}}
	b := ListCriteria{OrderBy: SortNewest, SearchQuery: "  GO ", Tags: []string{" B", "A "}}
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c := ListCriteria{OrderBy: SortOldest, SearchQuery: "go", Tags: []string{"a", "b"}}
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())

	// building the key must not reorder the caller's tags
	tags := []string{"b", "a"}
	_ = ListCriteria{Tags: tags}.CacheKey()
	assert.Equal(t, []string{"b", "a"}, tags)
}

func TestCacheKeyNamespace(t *testing.T) {
	key := ListCriteria{}.CacheKey()
	assert.Equal(t, "videos|newest||", key)
}

func TestParseListValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ListCriteria
	}{
		{
			name:  "empty query means default view",
			query: "",
			want:  ListCriteria{OrderBy: SortNewest, SearchQuery: "", Tags: []string{}},
		},
		{
			name:  "all params",
			query: "search=Cat+Videos&tags=Pets,funny&sort=oldest",
			want:  ListCriteria{OrderBy: SortOldest, SearchQuery: "cat videos", Tags: []string{"pets", "funny"}},
		},
		{
			name:  "blank tag entries dropped",
			query: "tags=a,,b,",
			want:  ListCriteria{OrderBy: SortNewest, Tags: []string{"a", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseListValues(v))
		})
	}
}
