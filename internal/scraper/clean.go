package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText strips markup and decodes entities the extractor sometimes leaves
// in text fields, then collapses whitespace.
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
