package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	headerFence      = "---"
	recordFilePrefix = "dep-update"
)

// ChangesetRecord is one versioned change record: a machine-readable
// bump-type header followed by a free-text body.
type ChangesetRecord struct {
	Header   map[string]BumpType // package name -> bump type
	Body     string
	Metadata map[string]string
}

// Render produces the persisted two-part file content: a fenced header
// mapping each package to its bump type, then the body. Header entries are
// sorted so identical inputs always render identical bytes. The result is
// UTF-8 with a trailing newline.
func (r ChangesetRecord) Render() string {
	var sb strings.Builder

	sb.WriteString(headerFence + "\n")
	for _, name := range r.sortedPackages() {
		sb.WriteString(fmt.Sprintf("%q: %s\n", name, r.Header[name]))
	}
	sb.WriteString(headerFence + "\n\n")

	sb.WriteString(strings.TrimRight(r.Body, "\n"))
	sb.WriteString("\n")

	return sb.String()
}

// Filename derives a stable record filename from the given identifier
// (typically the short head-commit hash), so re-runs overwrite the same
// file instead of accumulating duplicates. Multi-record splits disambiguate
// with the package name.
func (r ChangesetRecord) Filename(identifier string) string {
	name := recordFilePrefix + "-" + Slugify(identifier)
	if len(r.Header) == 1 {
		for pkg := range r.Header {
			if slug := Slugify(pkg); slug != "" {
				name += "-" + slug
			}
		}
	}
	return name + ".md"
}

func (r ChangesetRecord) sortedPackages() []string {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input and collapses every non-alphanumeric run
// into a single dash, producing a filesystem-safe identifier.
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
