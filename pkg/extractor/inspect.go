package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Summary describes an extracted document for reports and previews.
type Summary struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Lang     string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Headings int    `json:"headings" yaml:"headings"`
	Sections int    `json:"sections" yaml:"sections"`
	Links    int    `json:"links" yaml:"links"`
	Images   int    `json:"images" yaml:"images"`
	Scripts  int    `json:"scripts" yaml:"scripts"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
}

// Inspect parses html and counts its main structural elements.
// The markup is only read, never rendered or executed.
func Inspect(html string) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return Summary{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Lang:     strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Headings: doc.Find("h1, h2, h3, h4, h5, h6").Length(),
		Sections: doc.Find("section, article").Length(),
		Links:    doc.Find("a[href]").Length(),
		Images:   doc.Find("img").Length(),
		Scripts:  doc.Find("script").Length(),
		Bytes:    len(html),
	}, nil
}
