package render

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var svgOpenTag = regexp.MustCompile(`<svg\b[^>]*>`)

// InjectStylesheet inserts css as a <style> element right after the opening <svg> tag.
// The document is returned unchanged when css is blank or no <svg> tag is present.
func InjectStylesheet(svg []byte, css string) []byte {
	css = strings.TrimSpace(css)
	if css == "" {
		return svg
	}
	loc := svgOpenTag.FindIndex(svg)
	if loc == nil {
		return svg
	}

	block := "\n<style type=\"text/css\"><![CDATA[\n" + css + "\n]]></style>"
	out := make([]byte, 0, len(svg)+len(block))
	out = append(out, svg[:loc[1]]...)
	out = append(out, block...)
	out = append(out, svg[loc[1]:]...)
	return out
}

// ResolveStylesheetHref turns a stylesheet reference into an href graphviz can embed.
// URLs with a scheme are returned untouched. Paths are resolved against baseDir
// (the working directory when empty) and converted to file:// URIs.
func ResolveStylesheetHref(ref, baseDir string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && len(u.Scheme) > 1 {
		return ref
	}

	p := ref
	if !filepath.IsAbs(p) {
		if baseDir == "" {
			baseDir = "."
		}
		p = filepath.Join(baseDir, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}
