package content

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/architected-by-miguel/sitecms/internal/util"
)

// MaxBase64Length bounds an upload's encoded size (about 9MB decoded).
const MaxBase64Length = 12_000_000

const (
	defaultFolder    = "misc"
	defaultImageName = "image"
	imageRoot        = "public/images/cms"
)

var imageExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/webp":    "webp",
	"image/gif":     "gif",
	"image/svg+xml": "svg",
}

// ImageExtension returns the file extension for an allowed MIME type.
func ImageExtension(mimeType string) (string, bool) {
	ext, ok := imageExtensions[mimeType]
	return ext, ok
}

var base64Pattern = regexp.MustCompile(`^[a-zA-Z0-9+/=]+$`)

// ValidBase64 checks the size bound and alphabet of an encoded upload and
// that it decodes as standard padded base64.
func ValidBase64(s string) bool {
	if s == "" || len(s) > MaxBase64Length || !base64Pattern.MatchString(s) {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedHyphen  = regexp.MustCompile(`-{2,}`)
	extension       = regexp.MustCompile(`(?i)\.[a-z0-9]+$`)
)

// Slugify folds s to lowercase ASCII words joined by hyphens. Accents are
// removed; other non-alphanumeric runs become a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(util.StripAccents(s))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return repeatedHyphen.ReplaceAllString(s, "-")
}

// FolderSegment sanitizes an upload folder, defaulting to "misc".
func FolderSegment(folder string) string {
	if s := Slugify(folder); s != "" {
		return s
	}
	return defaultFolder
}

// ImageName sanitizes an upload file name without its extension,
// defaulting to "image".
func ImageName(fileName string) string {
	if s := Slugify(extension.ReplaceAllString(fileName, "")); s != "" {
		return s
	}
	return defaultImageName
}

// ImagePath returns the repository path for an upload made at now:
// public/images/cms/{folder}/{yyyy}/{mm}/{name}-{ts}.{ext}, where ts is the
// last six digits of the Unix millisecond time. Dates are UTC.
func ImagePath(folder, name, ext string, now time.Time) string {
	utc := now.UTC()
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s/%s/%04d/%02d/%s-%s.%s", imageRoot, folder, utc.Year(), int(utc.Month()), name, ms, ext)
}

// PublicURL returns the site URL for a repository path under public/.
func PublicURL(path string) string {
	return "/" + strings.TrimPrefix(path, "public/")
}

// UploadMessage is the commit message for an image upload.
func UploadMessage(folder, name string) string {
	return "cms: upload image " + folder + "/" + name
}
