package content

import (
	"fmt"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RequiredFields are the frontmatter keys every document must set.
var RequiredFields = []string{"slug", "title", "summary", "tags", "published"}

// ValidationError is a rule violation whose message is safe to show the
// caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidSlug reports whether slug is lowercase alphanumeric words joined by
// single hyphens.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ValidateMarkdownDocument applies the write-time rules to a document
// destined for path. Paths that are not Markdown documents pass unchecked.
func ValidateMarkdownDocument(path, raw string) error {
	if !IsMarkdownDocument(path) {
		return nil
	}
	fm, body := ParseFrontmatter(raw)

	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(fm[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return invalid("Missing required metadata: %s.", strings.Join(missing, ", "))
	}
	if !ValidSlug(unquote(fm["slug"])) {
		return invalid("Invalid slug format. Use lowercase letters, numbers, and hyphens only.")
	}
	if strings.TrimSpace(body) == "" {
		return invalid("Content body is required.")
	}
	return nil
}

// Document is a parsed Markdown document.
type Document struct {
	Slug      string
	Title     string
	Summary   string
	Tags      []string
	Published bool
	Body      string
	Sections  []Section
}

// ParseMarkdownDoc parses raw and checks the typed frontmatter. Unlike
// ValidateMarkdownDocument it requires tags to be a list and published to
// be a boolean.
func ParseMarkdownDoc(raw string) (*Document, error) {
	fm, body := ParseDocument(raw)

	slug, err := requireString(fm, "slug")
	if err != nil {
		return nil, err
	}
	if !ValidSlug(slug) {
		return nil, invalid("invalid slug format")
	}
	title, err := requireString(fm, "title")
	if err != nil {
		return nil, err
	}
	summary, err := requireString(fm, "summary")
	if err != nil {
		return nil, err
	}
	tags, ok := fm["tags"].([]string)
	if !ok {
		return nil, invalid("invalid tags")
	}
	published, ok := fm["published"].(bool)
	if !ok {
		return nil, invalid("invalid published")
	}
	return &Document{
		Slug:      slug,
		Title:     title,
		Summary:   summary,
		Tags:      tags,
		Published: published,
		Body:      body,
	}, nil
}

// CaseStudySections are the headings a published case study or deep dive
// must contain, in order.
var CaseStudySections = []string{
	"Strategic Context",
	"Architecture",
	"Trade-offs",
	"Execution",
	"Impact",
	"What's Next",
}

var digit = regexp.MustCompile(`\d`)

// ValidateCaseStudy parses raw and, unless it is a draft, enforces the
// section structure and a numeric Impact section.
func ValidateCaseStudy(raw string) (*Document, error) {
	doc, err := ParseMarkdownDoc(raw)
	if err != nil {
		return nil, err
	}
	doc.Sections = ExtractSections(doc.Body)
	if !doc.Published {
		return doc, nil
	}

	if len(doc.Sections) != len(CaseStudySections) {
		return nil, invalid("case study must include all required sections")
	}
	for i, want := range CaseStudySections {
		if doc.Sections[i].Heading != want {
			return nil, invalid("case study section order is invalid")
		}
	}
	for _, s := range doc.Sections {
		if s.Heading == "Impact" && !digit.MatchString(s.Content) {
			return nil, invalid("impact section must include at least one numeric metric")
		}
	}
	return doc, nil
}

func requireString(fm Frontmatter, field string) (string, error) {
	s, ok := fm[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", invalid("invalid %s", field)
	}
	return strings.TrimSpace(s), nil
}
