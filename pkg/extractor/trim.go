package extractor

import "regexp"

var closingHTML = regexp.MustCompile(`(?i)</html\s*>`)

// TrimTrailing drops anything after the last closing html tag, such as the
// closing remarks a model appends to raw markup. Input without a closing
// tag is returned unchanged.
func TrimTrailing(html string) string {
	matches := closingHTML.FindAllStringIndex(html, -1)
	if len(matches) == 0 {
		return html
	}
	return html[:matches[len(matches)-1][1]]
}
