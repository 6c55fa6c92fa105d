package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "---\r\nslug: \"revenue-ops-redesign\"\r\ntitle: Revenue Ops: Redesign\r\nsummary: 'Short'\r\ntags: [ops, \"data\", ]\r\npublished: true\r\norder: 2\r\nnot a pair\r\n---\r\n\r\n## Strategic Context\r\nBody\r\n"

func TestParseFrontmatter(t *testing.T) {
	fm, body := ParseFrontmatter(sampleDoc)
	assert.Equal(t, `"revenue-ops-redesign"`, fm["slug"])
	assert.Equal(t, "Revenue Ops: Redesign", fm["title"], "only the first colon separates key and value")
	assert.Equal(t, "true", fm["published"])
	assert.NotContains(t, fm, "not a pair")
	assert.Equal(t, "## Strategic Context\nBody", body)
}

func TestParseFrontmatter_NoHeader(t *testing.T) {
	fm, body := ParseFrontmatter("  just text\n")
	assert.Empty(t, fm)
	assert.Equal(t, "just text", body)

	fm, body = ParseFrontmatter("---\nslug: x\nno closing delimiter")
	assert.Empty(t, fm)
	assert.Equal(t, "---\nslug: x\nno closing delimiter", body)
}

func TestParseDocument(t *testing.T) {
	fm, _ := ParseDocument(sampleDoc)
	assert.Equal(t, "revenue-ops-redesign", fm["slug"])
	assert.Equal(t, "Short", fm["summary"])
	assert.Equal(t, []string{"ops", "data"}, fm["tags"])
	assert.Equal(t, true, fm["published"])
	assert.Equal(t, 2.0, fm["order"])
}

func TestBuildMarkdown(t *testing.T) {
	out := BuildMarkdown(Frontmatter{
		"slug":      "a-b",
		"tags":      []string{"x", "y"},
		"published": false,
	}, "\n\nHello\n\n")
	assert.Equal(t, "---\npublished: false\nslug: a-b\ntags: [x, y]\n---\n\nHello\n", out)

	fm, body := ParseDocument(out)
	require.Equal(t, "Hello", body)
	assert.Equal(t, []string{"x", "y"}, fm["tags"])
	assert.Equal(t, false, fm["published"])
}
