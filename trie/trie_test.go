package trie

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		segments []Segment
	}{
		{"root", "/", []Segment{{Kind: Static}}},
		{"static", "/users/list", []Segment{{Static, "users"}, {Static, "list"}}},
		{"trailing slash", "/users/", []Segment{{Static, "users"}, {Kind: Static}}},
		{"param", "/users/{id}", []Segment{{Static, "users"}, {Param, "id"}}},
		{"catch-all", "/files/{*rest}", []Segment{{Static, "files"}, {CatchAll, "rest"}}},
		{"wildcard", "/api/*", []Segment{{Static, "api"}, {Kind: Wildcard}}},
		{"global wildcard", "*", []Segment{{Kind: Wildcard}}},
		{"rooted wildcard", "/*", []Segment{{Kind: Wildcard}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.segments, p.Segments())
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestParsePattern_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{"users", ErrMissingSlash},
		{"", ErrMissingSlash},
		{"/users//list", ErrEmptySegment},
		{"//", ErrEmptySegment},
		{"/files/{*rest}/meta", ErrSegmentAfterTail},
		{"/files/{*rest}/", ErrSegmentAfterTail},
		{"/api/*/users", ErrSegmentAfterTail},
		{"/users/{}", ErrEmptyParamName},
		{"/files/{*}", ErrEmptyParamName},
		{"/users/{id}/posts/{id}", ErrDuplicateParam},
		{"/users/{id}/{*id}", ErrDuplicateParam},
		{"/file.{ext}", ErrInvalidSegment},
		{"/a*b", ErrInvalidSegment},
		{"/users/{i{d}", ErrInvalidSegment},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := ParsePattern(tt.pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var perr *PatternError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.pattern, perr.Pattern)
		})
	}
}

func TestPattern_ParamNames(t *testing.T) {
	p, err := ParsePattern("/repos/{owner}/{repo}/blob/{*path}")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "repo", "path"}, p.ParamNames())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/api/users", Join("/api", "/users"))
	assert.Equal(t, "/api/users", Join("/api/", "users"))
	assert.Equal(t, "/api", Join("/api", "/"))
	assert.Equal(t, "/api/*", Join("/api", "*"))
	assert.Equal(t, "/users", Join("", "/users"))
	assert.Equal(t, "/v1/api/{id}", Join("/v1/api", "/{id}"))
}

func mustInsert(t *testing.T, m *Matcher, pattern string, index int) {
	t.Helper()
	require.NoError(t, m.Insert(pattern, index))
}

func TestMatcher_MatchOne(t *testing.T) {
	m := New()
	mustInsert(t, m, "/", 0)
	mustInsert(t, m, "/users", 1)
	mustInsert(t, m, "/users/", 2)
	mustInsert(t, m, "/users/{id}", 3)
	mustInsert(t, m, "/users/me", 4)
	mustInsert(t, m, "/users/{id}/posts/{post}", 5)
	mustInsert(t, m, "/files/{*rest}", 6)
	mustInsert(t, m, "/static/*", 7)

	tests := []struct {
		path    string
		found   bool
		pattern string
		params  []Binding
	}{
		{"/", true, "/", nil},
		{"/users", true, "/users", nil},
		{"/users/", true, "/users/", nil},
		{"/users/42", true, "/users/{id}", []Binding{{"id", "42"}}},
		{"/users/me", true, "/users/me", nil},
		{"/users/42/posts/7", true, "/users/{id}/posts/{post}", []Binding{{"id", "42"}, {"post", "7"}}},
		{"/users/me/posts/7", true, "/users/{id}/posts/{post}", []Binding{{"id", "me"}, {"post", "7"}}},
		{"/files/a/b/c", true, "/files/{*rest}", []Binding{{"rest", "a/b/c"}}},
		{"/files/a", true, "/files/{*rest}", []Binding{{"rest", "a"}}},
		{"/files/", false, "", nil},
		{"/files", false, "", nil},
		{"/static", true, "/static/*", nil},
		{"/static/css/site.css", true, "/static/*", nil},
		{"/Users", false, "", nil},
		{"/users//posts", false, "", nil},
		{"/unknown", false, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := m.MatchOne(tt.path)
			require.Equal(t, tt.found, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Equal(t, tt.params, got.Params)
		})
	}
}

func TestMatcher_Precedence(t *testing.T) {
	m := New()
	mustInsert(t, m, "/a/*", 0)
	mustInsert(t, m, "/a/{*rest}", 1)
	mustInsert(t, m, "/a/{p}", 2)
	mustInsert(t, m, "/a/b", 3)

	match := func(path string) int {
		got, ok := m.MatchOne(path)
		require.True(t, ok, path)
		return got.Indices[0]
	}

	assert.Equal(t, 3, match("/a/b"))
	assert.Equal(t, 2, match("/a/c"))
	assert.Equal(t, 1, match("/a/c/d"))
	assert.Equal(t, 0, match("/a"))
}

func TestMatcher_Backtracking(t *testing.T) {
	m := New()
	mustInsert(t, m, "/a/b/c", 0)
	mustInsert(t, m, "/a/{x}/d", 1)

	got, ok := m.MatchOne("/a/b/d")
	require.True(t, ok)
	assert.Equal(t, "/a/{x}/d", got.Pattern)
	assert.Equal(t, []Binding{{"x", "b"}}, got.Params)
}

func TestMatcher_SamePatternAppends(t *testing.T) {
	m := New()
	mustInsert(t, m, "/hello", 0)
	mustInsert(t, m, "/hello", 3)
	mustInsert(t, m, "/hello", 3)

	got, ok := m.MatchOne("/hello")
	require.True(t, ok)
	assert.Equal(t, []int{0, 3}, got.Indices)
	assert.Equal(t, 1, m.Len())
}

func TestMatcher_ConflictingParamNames(t *testing.T) {
	m := New()
	mustInsert(t, m, "/users/{id}", 0)

	err := m.Insert("/users/{uid}", 1)
	assert.ErrorIs(t, err, ErrConflictingParamSet)

	// Different shapes below a shared param edge are fine.
	assert.NoError(t, m.Insert("/users/{id}/posts", 2))
}

func TestMatcher_InsertRejectsMalformed(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Insert("/a/{*b}/c", 0), ErrSegmentAfterTail)
	assert.Equal(t, 0, m.Len())
}

func TestMatcher_MatchAll(t *testing.T) {
	m := New()
	mustInsert(t, m, "*", 0)
	mustInsert(t, m, "/api/*", 1)
	mustInsert(t, m, "/api/ping", 2)
	mustInsert(t, m, "/api/{name}", 3)
	mustInsert(t, m, "/admin/*", 4)
	mustInsert(t, m, "/", 5)

	indices := func(path string) []int {
		var out []int
		for _, match := range m.MatchAll(path) {
			out = append(out, match.Indices...)
		}
		slices.Sort(out)
		return out
	}

	assert.Equal(t, []int{0, 1, 2, 3}, indices("/api/ping"))
	assert.Equal(t, []int{0, 1, 3}, indices("/api/users"))
	assert.Equal(t, []int{0, 1}, indices("/api"))
	assert.Equal(t, []int{0, 1}, indices("/api/a/b"))
	assert.Equal(t, []int{0, 5}, indices("/"))
	assert.Equal(t, []int{0}, indices("/other"))
}

func TestMatcher_MatchAllParams(t *testing.T) {
	m := New()
	mustInsert(t, m, "/users/{id}/*", 0)
	mustInsert(t, m, "/users/{uid}/posts/{*rest}", 1)

	matches := m.MatchAll("/users/42/posts/a/b")
	require.Len(t, matches, 2)

	byPattern := make(map[string][]Binding)
	for _, match := range matches {
		byPattern[match.Pattern] = match.Params
	}
	assert.Equal(t, []Binding{{"id", "42"}}, byPattern["/users/{id}/*"])
	assert.Equal(t, []Binding{{"uid", "42"}, {"rest", "a/b"}}, byPattern["/users/{uid}/posts/{*rest}"])
}

func TestMatcher_Idempotent(t *testing.T) {
	m := New()
	mustInsert(t, m, "/users/{id}", 0)
	mustInsert(t, m, "*", 1)

	first := m.MatchAll("/users/7")
	second := m.MatchAll("/users/7")
	assert.ElementsMatch(t, first, second)

	one, _ := m.MatchOne("/users/7")
	two, _ := m.MatchOne("/users/7")
	assert.Equal(t, one, two)
}

func TestMatcher_StaticIsolation(t *testing.T) {
	m := New()
	mustInsert(t, m, "/alpha", 0)
	mustInsert(t, m, "/beta", 1)

	got, ok := m.MatchOne("/alpha")
	require.True(t, ok)
	assert.Equal(t, []int{0}, got.Indices)
	assert.Len(t, m.MatchAll("/beta"), 1)
	assert.Equal(t, []int{1}, m.MatchAll("/beta")[0].Indices)
}
