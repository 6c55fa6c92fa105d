package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notes = `---
slug: notes
title: Notes
summary: Working notes
tags: [systems]
published: true
---
![Diagram](img/diagram.png)

![Missing](img/missing.png)
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestCMS_LoginCheck(t *testing.T) {
	srv, _ := startSite(t)

	out, err := execute(t, "cms", "login-check", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Session OK ("+srv.URL+")\n", out)
}

func TestCMS_RequiresPassword(t *testing.T) {
	t.Setenv("SITE_PASSWORD", "")
	_, err := execute(t, "cms", "login-check", "--url", "http://127.0.0.1:1")
	require.EqualError(t, err, "SITE_PASSWORD is not set")
}

func TestCMS_PushAndRemove(t *testing.T) {
	srv, repo := startSite(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "principles.md", "---\nslug: principles\ntitle: P\nsummary: S\ntags: [a]\npublished: true\n---\nBody\n")

	out, err := execute(t, "cms", "push", doc, "content/philosophy/principles.md", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Created content/philosophy/principles.md (cms: update philosophy principles)\n")
	assert.Contains(t, out, "Live:    /philosophy\n")
	_, ok := repo.get("content/philosophy/principles.md")
	assert.True(t, ok)

	out, err = execute(t, "cms", "rm", "content/philosophy/principles.md", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Deleted content/philosophy/principles.md\n", out)
	_, ok = repo.get("content/philosophy/principles.md")
	assert.False(t, ok)
}

func TestCMS_PushRejected(t *testing.T) {
	srv, _ := startSite(t)
	doc := writeFile(t, t.TempDir(), "bad.md", "---\ntitle: Bad\n---\nBody\n")

	_, err := execute(t, "cms", "push", doc, "content/philosophy/bad.md", "--url", srv.URL)
	require.EqualError(t, err, "Missing required metadata: slug, summary, tags, published.")
}

func TestCMS_Upload(t *testing.T) {
	srv, repo := startSite(t)
	img := writeFile(t, t.TempDir(), "Team Photo.png", "png")

	out, err := execute(t, "cms", "upload", img, "--url", srv.URL)
	require.NoError(t, err)
	assert.Regexp(t, `^Uploaded public/images/cms/misc/\d{4}/\d{2}/team-photo-\d{6}\.png\n/images/cms/misc/`, out)
	assert.Equal(t, 1, repo.count())
}

func TestCMS_Import(t *testing.T) {
	srv, repo := startSite(t)
	dir := t.TempDir()
	writeFile(t, dir, "img/diagram.png", "png")
	doc := writeFile(t, dir, "notes.md", notes)

	out, err := execute(t, "cms", "import", doc, "content/deep-dive/notes.md", "--url", srv.URL)
	require.NoError(t, err)
	assert.Regexp(t, `\[UPLOADED\] /images/cms/imports/\d{4}/\d{2}/diagram-\d{6}\.png`, out)
	assert.Contains(t, out, "[WARN] img/missing.png:")
	assert.Contains(t, out, "Created content/deep-dive/notes.md (cms: update deep dive notes)\n")
	assert.Contains(t, out, "Live:    /deep-dive/notes\n")

	committed, ok := repo.get("content/deep-dive/notes.md")
	require.True(t, ok)
	assert.Regexp(t, `!\[Diagram\]\(/images/cms/imports/\d{4}/\d{2}/diagram-\d{6}\.png\)`, committed)
	assert.Contains(t, committed, "> [Image placeholder] Missing\n")
}

func TestCMS_ImportNoCommit(t *testing.T) {
	srv, repo := startSite(t)
	dir := t.TempDir()
	writeFile(t, dir, "img/diagram.png", "png")
	doc := writeFile(t, dir, "notes.md", notes)

	out, err := execute(t, "cms", "import", doc, "content/deep-dive/notes.md", "--no-commit", "--folder", "drafts", "--url", srv.URL)
	require.NoError(t, err)
	assert.Regexp(t, `!\[Diagram\]\(/images/cms/drafts/`, out)
	_, ok := repo.get("content/deep-dive/notes.md")
	assert.False(t, ok)
}
