package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FileResult is the outcome of validating one file of a content tree. Err
// is nil when the file passed.
type FileResult struct {
	Path string
	Err  error
}

// CheckFiles validates a local content tree rooted at fsys, as it would be
// read by the site build, and reports every page and document it looked at.
func CheckFiles(fsys fs.FS) []FileResult {
	var results []FileResult
	for _, p := range pagePaths {
		data, err := fs.ReadFile(fsys, p)
		if err == nil {
			err = ValidatePage(p, data)
		}
		results = append(results, FileResult{Path: p, Err: err})
	}

	for _, dir := range documentDirs {
		dir = strings.TrimSuffix(dir, "/")
		names, err := markdownFiles(fsys, dir)
		if err != nil {
			results = append(results, FileResult{Path: dir, Err: err})
			continue
		}
		slugs := map[string]string{}
		for _, name := range names {
			results = append(results, FileResult{Path: name, Err: checkDocument(fsys, dir, name, slugs)})
		}
	}
	return results
}

// Check is CheckFiles with every failure joined into one error.
func Check(fsys fs.FS) error {
	var errs []error
	for _, r := range CheckFiles(fsys) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return errors.Join(errs...)
}

func checkDocument(fsys fs.FS, dir, name string, slugs map[string]string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	var doc *Document
	if dir+"/" == PhilosophyDir {
		doc, err = ParseMarkdownDoc(string(data))
	} else {
		doc, err = ValidateCaseStudy(string(data))
	}
	if err != nil {
		return err
	}
	if prev, dup := slugs[doc.Slug]; dup {
		return fmt.Errorf("duplicate slug %q (also in %s)", doc.Slug, prev)
	}
	slugs[doc.Slug] = name
	return nil
}

// markdownFiles lists the .md files directly inside dir. A missing
// directory has no documents.
func markdownFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			out = append(out, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
