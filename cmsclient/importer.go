package cmsclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/architected-by-miguel/sitecms/api"
	"github.com/architected-by-miguel/sitecms/content"
)

// defaultAlt labels images that were written without alt text.
const defaultAlt = "Imported image"

var (
	errOutsideRoot      = errors.New("image path is outside the import directory")
	errUnsupportedImage = errors.New("unsupported image format")
)

// Uploader stores one image. *Client satisfies it.
type Uploader interface {
	UploadImage(ctx context.Context, req api.UploadImageRequest) (*api.UploadImageResponse, error)
}

// Importer rewrites a Markdown document so that images referenced from
// the local filesystem point at uploaded copies in the site repository.
type Importer struct {
	uploader Uploader
	fsys     fs.FS
	folder   string
	parser   goldmark.Markdown
}

// ImportResult is the rewritten document and anything worth telling the
// author about it.
type ImportResult struct {
	Markdown string
	Uploaded []string
	Warnings []string
}

// NewImporter resolves image references against fsys and uploads them into
// folder.
func NewImporter(u Uploader, fsys fs.FS, folder string) *Importer {
	return &Importer{uploader: u, fsys: fsys, folder: folder, parser: goldmark.New()}
}

var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// Import uploads every local image in source and returns the document with
// rewritten references. A failed upload leaves a placeholder quote and a
// warning; the remaining images are still uploaded. When target is a case
// study or deep dive the result is also checked for the required sections.
func (im *Importer) Import(ctx context.Context, target string, source []byte) (*ImportResult, error) {
	src := []byte(strings.ReplaceAll(string(source), "\r\n", "\n"))
	wanted, code := im.scan(src)

	result := &ImportResult{}
	uploaded := map[string]string{}
	failed := map[string]bool{}
	var b strings.Builder
	last := 0
	for _, m := range imagePattern.FindAllSubmatchIndex(src, -1) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		dest := string(src[m[4]:m[5]])
		if inCode(code, m[0]) || len(wanted) == 0 || wanted[0] != dest {
			continue
		}
		wanted = wanted[1:]

		alt := strings.TrimSpace(string(src[m[2]:m[3]]))
		if alt == "" {
			alt = defaultAlt
		}
		b.Write(src[last:m[0]])
		last = m[1]

		url, ok := uploaded[dest]
		if !ok && !failed[dest] {
			var err error
			url, err = im.upload(ctx, dest)
			if err != nil {
				failed[dest] = true
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v. Placeholder inserted.", dest, err))
			} else {
				uploaded[dest] = url
				result.Uploaded = append(result.Uploaded, url)
			}
		}
		if failed[dest] {
			fmt.Fprintf(&b, "> [Image placeholder] %s", alt)
			continue
		}
		fmt.Fprintf(&b, "![%s](%s)", alt, url)
	}
	b.Write(src[last:])
	result.Markdown = b.String()

	if strings.HasPrefix(target, content.CaseStudiesDir) || strings.HasPrefix(target, content.DeepDiveDir) {
		if _, err := content.ValidateCaseStudy(result.Markdown); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}
	return result, nil
}

// scan lists, in document order, the destinations of images that live on
// the local filesystem, and the byte ranges of code where image syntax is
// literal text.
func (im *Importer) scan(src []byte) (images []string, code []text.Segment) {
	doc := im.parser.Parser().Parse(text.NewReader(src))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				code = append(code, lines.At(i))
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					code = append(code, t.Segment)
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			if isLocal(string(n.Destination)) {
				images = append(images, string(n.Destination))
			}
		}
		return ast.WalkContinue, nil
	})
	return images, code
}

func inCode(code []text.Segment, pos int) bool {
	for _, seg := range code {
		if pos >= seg.Start && pos < seg.Stop {
			return true
		}
	}
	return false
}

func isLocal(dest string) bool {
	switch {
	case dest == "", strings.Contains(dest, "://"), strings.HasPrefix(dest, "/"):
		return false
	case strings.HasPrefix(dest, "data:"), strings.HasPrefix(dest, "#"):
		return false
	}
	return true
}

func (im *Importer) upload(ctx context.Context, dest string) (string, error) {
	name := path.Clean(dest)
	if !fs.ValidPath(name) {
		return "", errOutsideRoot
	}
	mimeType, _, _ := strings.Cut(mime.TypeByExtension(path.Ext(name)), ";")
	if _, ok := content.ImageExtension(mimeType); !ok {
		return "", errUnsupportedImage
	}
	data, err := fs.ReadFile(im.fsys, name)
	if err != nil {
		return "", err
	}
	resp, err := im.uploader.UploadImage(ctx, api.UploadImageRequest{
		FileName:   path.Base(name),
		MimeType:   mimeType,
		DataBase64: base64.StdEncoding.EncodeToString(data),
		Folder:     im.folder,
	})
	if err != nil {
		return "", err
	}
	return resp.PublicURL, nil
}
