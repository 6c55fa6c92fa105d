package content

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const delimiter = "---\n"

// ParseFrontmatter splits raw into its `key: value` header and trimmed body.
// Values are kept as raw strings. A document without a complete header has
// no frontmatter and the whole input as its body.
func ParseFrontmatter(raw string) (map[string]string, string) {
	header, body, ok := splitFrontmatter(raw)
	fm := map[string]string{}
	if !ok {
		return fm, body
	}
	for _, line := range strings.Split(header, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fm[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fm, body
}

// Frontmatter is a typed header: values are bool, float64, []string or
// string.
type Frontmatter map[string]any

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseDocument is ParseFrontmatter with scalar typing: true/false become
// bools, plain decimals become numbers, `[a, b]` becomes a string list and
// surrounding quotes are stripped.
func ParseDocument(raw string) (Frontmatter, string) {
	fm, body := ParseFrontmatter(raw)
	out := make(Frontmatter, len(fm))
	for k, v := range fm {
		out[k] = parseScalar(v)
	}
	return out, body
}

// BuildMarkdown renders fm and body as a document ParseDocument can read.
// Keys are written in sorted order.
func BuildMarkdown(fm Frontmatter, body string) string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(delimiter)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, formatScalar(fm[k]))
	}
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}

func splitFrontmatter(raw string) (header, body string, ok bool) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(normalized, delimiter) {
		return "", strings.TrimSpace(normalized), false
	}
	end := strings.Index(normalized[len(delimiter):], "\n"+delimiter)
	if end < 0 {
		return "", strings.TrimSpace(normalized), false
	}
	end += len(delimiter)
	return normalized[len(delimiter):end], strings.TrimSpace(normalized[end+len("\n"+delimiter):]), true
}

func parseScalar(v string) any {
	v = strings.TrimSpace(v)
	switch {
	case v == "true":
		return true
	case v == "false":
		return false
	case numberPattern.MatchString(v):
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]"):
		return parseList(v)
	}
	return unquote(v)
}

func parseList(v string) []string {
	inner := strings.TrimSpace(v[1 : len(v)-1])
	out := []string{}
	if inner == "" {
		return out
	}
	for _, part := range strings.Split(inner, ",") {
		if s := unquote(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// unquote drops one leading and one trailing quote character.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
