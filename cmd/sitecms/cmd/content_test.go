package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architected-by-miguel/sitecms/content"
)

func TestBuildReport(t *testing.T) {
	report := buildReport("site", []content.FileResult{
		{Path: content.HomePage},
		{Path: content.ResumePage, Err: errors.New("Invalid resume content")},
	})

	assert.False(t, report.Valid)
	assert.Equal(t, []fileCheck{
		{Path: content.HomePage, Status: "pass"},
		{Path: content.ResumePage, Status: "fail", Detail: "Invalid resume content"},
	}, report.Files)

	assert.True(t, buildReport("site", []content.FileResult{{Path: content.HomePage}}).Valid)
}

func TestPrintHumanReport(t *testing.T) {
	var buf bytes.Buffer
	printHumanReport(&buf, buildReport("site", []content.FileResult{
		{Path: content.HomePage},
		{Path: content.ResumePage, Err: errors.New("Invalid resume content")},
	}))

	assert.Equal(t, "Content check: site\n"+
		"Files:  2\n\n"+
		"[PASS] content/pages/home.json\n"+
		"[FAIL] content/pages/resume.json: Invalid resume content\n\n"+
		"Result: INVALID (1 error(s))\n", buf.String())
}

func TestContentCheck_EmptyTree(t *testing.T) {
	out, err := execute(t, "content", "check", t.TempDir())
	require.ErrorIs(t, err, errContentInvalid)
	assert.Contains(t, out, "[FAIL] content/pages/home.json:")
	assert.Contains(t, out, "Result: INVALID (3 error(s))")
}

func TestContentCheck_JSON(t *testing.T) {
	out, err := execute(t, "content", "check", "--json", t.TempDir())
	require.ErrorIs(t, err, errContentInvalid)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Len(t, report.Files, 3)
}

func TestContentCheck_NotADirectory(t *testing.T) {
	f := writeFile(t, t.TempDir(), "file.txt", "x")
	_, err := execute(t, "content", "check", f)
	require.ErrorContains(t, err, "is not a directory")
}
