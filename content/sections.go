package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is the text between one `##` heading and the next.
type Section struct {
	Heading string
	Content string
}

var markdown = goldmark.New()

// ExtractSections returns the level-two ATX headings of body with the
// trimmed content that follows each. Headings inside code blocks are
// ignored.
func ExtractSections(body string) []Section {
	src := []byte(strings.ReplaceAll(body, "\r\n", "\n"))
	doc := markdown.Parser().Parse(text.NewReader(src))

	type mark struct {
		heading   string
		lineStart int
		lineEnd   int
	}
	var marks []mark
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		start := bytes.LastIndexByte(src[:seg.Start], '\n') + 1
		if !bytes.HasPrefix(bytes.TrimLeft(src[start:seg.Start], " "), []byte("##")) {
			// setext heading
			continue
		}
		end := len(src)
		if i := bytes.IndexByte(src[seg.Stop:], '\n'); i >= 0 {
			end = seg.Stop + i
		}
		heading := strings.TrimSpace(string(seg.Value(src)))
		if heading == "" {
			continue
		}
		marks = append(marks, mark{heading: heading, lineStart: start, lineEnd: end})
	}

	sections := make([]Section, 0, len(marks))
	for i, m := range marks {
		stop := len(src)
		if i+1 < len(marks) {
			stop = marks[i+1].lineStart
		}
		sections = append(sections, Section{
			Heading: m.heading,
			Content: strings.TrimSpace(string(src[m.lineEnd:stop])),
		})
	}
	return sections
}
