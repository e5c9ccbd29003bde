package comics

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Change Me!! Vol.2":      "change-me-vol-2",
		"":                       "",
		"One Piece":              "one-piece",
		"---":                    "",
		"  Solo   Leveling  ":    "solo-leveling",
		"Tokyo卍Revengers":        "tokyo-revengers",
		"A":                      "a",
		"100% Strawberry!":       "100-strawberry",
	}

	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugifyShape(t *testing.T) {
	// Whatever goes in, the output is lowercase alphanumerics joined by
	// single hyphens, or empty.
	shape := regexp.MustCompile(`^$|^[a-z0-9]+(-[a-z0-9]+)*$`)

	inputs := []string{
		"!!!", "Foo Bar", "ÅÄÖ", "chapter 10.5 (end)", "__init__", "a--b",
	}
	for _, in := range inputs {
		assert.Regexp(t, shape, Slugify(in), "input %q", in)
	}
}

func TestNormalizeLink(t *testing.T) {
	assert.Equal(t, "/some-title/", NormalizeLink("/manga/some-title/"))
	assert.Equal(t, "/some-title/", NormalizeLink("/plus/some-title/"))
	assert.Equal(t, "abc", NormalizeLink("/detail-komik/abc"))
	assert.Equal(t, "/unknown/abc", NormalizeLink("/unknown/abc"))
	assert.Equal(t, "", NormalizeLink(""))
}

func TestBlocked(t *testing.T) {
	assert.True(t, Blocked("Foo APK", "1"))
	assert.True(t, Blocked("Bar", "Download Link"))
	assert.False(t, Blocked("Baz", "12"))
}

func TestFixImage(t *testing.T) {
	assert.Equal(t, PlaceholderCover, fixImage(""))
	assert.Equal(t, PlaceholderCover, fixImage("https://cdn.example.com/lazy.jpg"))
	assert.Equal(t, "https://cdn.example.com/cover.jpg", fixImage("https://cdn.example.com/cover.jpg"))
}
