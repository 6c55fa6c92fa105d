package content

import (
	"path"
	"regexp"
	"strings"
)

// CommitMessage returns the trimmed caller message, or a default derived
// from the directory path is committed to.
func CommitMessage(p, provided string) string {
	if m := strings.TrimSpace(provided); m != "" {
		return m
	}
	slug := strings.TrimSuffix(path.Base(p), ".md")
	switch {
	case strings.HasPrefix(p, CaseStudiesDir):
		return "cms: update case study " + slug
	case strings.HasPrefix(p, PhilosophyDir):
		return "cms: update philosophy " + slug
	case strings.HasPrefix(p, DeepDiveDir):
		return "cms: update deep dive " + slug
	}
	return "cms: update " + p
}

// DeleteMessage is the commit message for removing p.
func DeleteMessage(p string) string {
	return "cms: delete " + p
}

// URLs are the site locations affected by a write. Both are empty for
// page files.
type URLs struct {
	LiveURL    string
	PreviewURL string
}

var documentPath = regexp.MustCompile(`^content/(case-studies|deep-dive|philosophy)/([a-z0-9-]+)\.md$`)

// DeriveURLs maps a document path to where it is served.
func DeriveURLs(p string) URLs {
	m := documentPath.FindStringSubmatch(p)
	if m == nil {
		return URLs{}
	}
	slug := m[2]
	switch m[1] {
	case "case-studies":
		return URLs{
			LiveURL:    "/case-studies/" + slug,
			PreviewURL: "/admin/case-studies/preview/" + slug,
		}
	case "deep-dive":
		return URLs{LiveURL: "/deep-dive/" + slug}
	default:
		return URLs{LiveURL: "/philosophy"}
	}
}
