// Package extract turns the results region's HTML into the ordered lines
// recorded as a domain's technology stack. It does no semantic parsing of
// technology names or versions.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements start and end a line, like the browser's innerText.
var blockElements = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Blockquote: {},
	atom.Dd: {}, atom.Details: {}, atom.Div: {}, atom.Dl: {}, atom.Dt: {},
	atom.Fieldset: {}, atom.Figcaption: {}, atom.Figure: {}, atom.Footer: {},
	atom.Form: {}, atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {},
	atom.H5: {}, atom.H6: {}, atom.Header: {}, atom.Hr: {}, atom.Li: {},
	atom.Main: {}, atom.Nav: {}, atom.Ol: {}, atom.P: {}, atom.Pre: {},
	atom.Section: {}, atom.Summary: {}, atom.Table: {}, atom.Tr: {},
	atom.Td: {}, atom.Th: {}, atom.Ul: {}, atom.Option: {},
}

// Lines returns the visible text of rawHTML as trimmed, non-empty lines in
// document order.
//
// When itemSelector is set and matches, each matched element contributes one
// line (its whitespace-collapsed text). Otherwise block elements and <br>
// delimit lines.
func Lines(rawHTML string, itemSelector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript, template, svg").Remove()

	if itemSelector != "" {
		sel, err := cascadia.Compile(itemSelector)
		if err != nil {
			return nil, err
		}
		items := doc.FindMatcher(sel)
		if items.Length() > 0 {
			lines := make([]string, 0, items.Length())
			items.Each(func(_ int, s *goquery.Selection) {
				if line := collapse(s.Text()); line != "" {
					lines = append(lines, line)
				}
			})
			return lines, nil
		}
	}

	var b strings.Builder
	for _, n := range doc.Nodes {
		walk(&b, n)
	}
	return splitLines(b.String()), nil
}

// walk writes n's text into b, emitting newlines around block elements.
func walk(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	}

	_, block := blockElements[n.DataAtom]
	if block && n.Type == html.ElementNode {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
	if block && n.Type == html.ElementNode {
		b.WriteByte('\n')
	}
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if line := collapse(l); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// collapse trims s and folds internal whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
