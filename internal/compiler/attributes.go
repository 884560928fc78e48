package compiler

import (
	"regexp"
	"sort"
	"strings"
)

// attrPattern matches `name = value` where value is a run of word characters, dots,
// slashes, colons or hyphens. No quoting, no escaping.
var attrPattern = regexp.MustCompile(`(\w+)\s*=\s*([\w./:\-]+)`)

// ParseAttributes extracts every key=value pair found in line.
// Fragments that do not match are dropped; when a key repeats, the last value wins.
func ParseAttributes(line string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(line, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// FormatAttributes serializes attrs back into "k=v,k=v" form with sorted keys.
// ParseAttributes(FormatAttributes(m)) == m for any map ParseAttributes can produce.
func FormatAttributes(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, ",")
}
