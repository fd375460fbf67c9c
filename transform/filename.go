package transform

import (
	"regexp"
	"strings"
)

var (
	parenSuffixRegex = regexp.MustCompile(`\s*\([^)]*\)`)
	extensionRegex   = regexp.MustCompile(`(?i)\.(csv|xml|json)$`)
	vsPrefixRegex    = regexp.MustCompile(`^VS[ _]`)
	trailingRegex    = regexp.MustCompile(`_+$`)
)

// ConceptNameFromFile derives the registry concept name from a value-set
// export filename: a parenthesized download timestamp, the file extension,
// a leading "VS "/"VS_" prefix and trailing underscores are stripped.
//
//	"VS DocumentEntry.eventCodeList (download 2025-01-22T07_36_23).csv"
//	  -> "DocumentEntry.eventCodeList"
func ConceptNameFromFile(filename string) string {
	name := parenSuffixRegex.ReplaceAllString(filename, "")
	name = extensionRegex.ReplaceAllString(name, "")
	name = vsPrefixRegex.ReplaceAllString(name, "")
	name = trailingRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
