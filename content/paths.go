// Package content holds the rules for what the CMS may commit: which paths
// are writable, how Markdown documents and page JSON must look, and where
// uploaded images land.
package content

import (
	"strings"
)

// Page files are replaced wholesale and never deleted.
const (
	HomePage    = "content/pages/home.json"
	ResumePage  = "content/pages/resume.json"
	ContactPage = "content/pages/contact.json"
)

// Document directories hold one Markdown file per slug.
const (
	CaseStudiesDir = "content/case-studies/"
	PhilosophyDir  = "content/philosophy/"
	DeepDiveDir    = "content/deep-dive/"
)

var (
	pagePaths    = []string{HomePage, ResumePage, ContactPage}
	documentDirs = []string{CaseStudiesDir, PhilosophyDir, DeepDiveDir}
)

// WritablePath reports whether write-file may commit to path.
func WritablePath(path string) bool {
	if malformed(path) {
		return false
	}
	return IsPage(path) || inDocumentDir(path)
}

// DeletablePath reports whether delete-file may remove path. Page files are
// not deletable.
func DeletablePath(path string) bool {
	return !malformed(path) && inDocumentDir(path)
}

// IsPage reports whether path is one of the fixed page files.
func IsPage(path string) bool {
	for _, p := range pagePaths {
		if path == p {
			return true
		}
	}
	return false
}

// IsMarkdownDocument reports whether path is a Markdown file under a
// document directory.
func IsMarkdownDocument(path string) bool {
	return inDocumentDir(path) && strings.HasSuffix(path, ".md")
}

func inDocumentDir(path string) bool {
	for _, dir := range documentDirs {
		if strings.HasPrefix(path, dir) && len(path) > len(dir) {
			return true
		}
	}
	return false
}

func malformed(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, `\`) {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return true
		}
	}
	return false
}
