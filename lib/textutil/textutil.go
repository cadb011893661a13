package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// ExtractBetween returns the substring between the first occurrence of
// `first` and the first occurrence of `second` after it, with the markers
// themselves included when withFirst/withSecond are set. It is a lossy,
// best-effort scanner rather than a parser: empty input or an absent
// marker yields "".
func ExtractBetween(original, first, second string, withFirst, withSecond bool) string {
	if original == "" {
		return ""
	}
	firstPos := strings.Index(original, first)
	if firstPos < 0 {
		return ""
	}
	searchFrom := firstPos + len(first)
	secondPos := strings.Index(original[searchFrom:], second)
	if secondPos < 0 {
		return ""
	}

	start := firstPos
	if !withFirst {
		start += len(first)
	}
	end := searchFrom + secondPos
	if withSecond {
		end += len(second)
	}
	return original[start:end]
}
