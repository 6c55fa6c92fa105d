package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "custom", CommitMessage("content/pages/home.json", "  custom  "))
	assert.Equal(t, "cms: update case study revenue-ops", CommitMessage("content/case-studies/revenue-ops.md", ""))
	assert.Equal(t, "cms: update philosophy principles", CommitMessage("content/philosophy/principles.md", " "))
	assert.Equal(t, "cms: update deep dive queues", CommitMessage("content/deep-dive/queues.md", ""))
	assert.Equal(t, "cms: update content/pages/home.json", CommitMessage("content/pages/home.json", ""))
	assert.Equal(t, "cms: delete content/deep-dive/queues.md", DeleteMessage("content/deep-dive/queues.md"))
}

func TestDeriveURLs(t *testing.T) {
	assert.Equal(t, URLs{
		LiveURL:    "/case-studies/revenue-ops",
		PreviewURL: "/admin/case-studies/preview/revenue-ops",
	}, DeriveURLs("content/case-studies/revenue-ops.md"))
	assert.Equal(t, URLs{LiveURL: "/deep-dive/queues"}, DeriveURLs("content/deep-dive/queues.md"))
	assert.Equal(t, URLs{LiveURL: "/philosophy"}, DeriveURLs("content/philosophy/principles.md"))
	assert.Equal(t, URLs{}, DeriveURLs("content/pages/home.json"))
	assert.Equal(t, URLs{}, DeriveURLs("content/case-studies/Bad_Name.md"))
}
