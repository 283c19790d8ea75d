package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var spaceRe = regexp.MustCompile(`[\s\p{Zs}]+`)

// Normalize strips markup down to a single plain-text stream. Visible text is
// kept, and alt/title/aria-label attribute values are appended next to their
// element so price or stock hints embedded only in image alt text survive.
// Full-width digits and separators are folded to ASCII and all whitespace
// variants collapse to single spaces. Never fails on malformed markup.
func Normalize(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return collapseSpace(FoldWidth(rawHTML))
	}

	doc.Find("[alt], [title], [aria-label]").Each(func(_ int, s *goquery.Selection) {
		var extra []string
		for _, name := range []string{"alt", "title", "aria-label"} {
			if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
				extra = append(extra, v)
			}
		}
		if len(extra) > 0 {
			s.AppendNodes(&html.Node{
				Type: html.TextNode,
				Data: " " + strings.Join(extra, " ") + " ",
			})
		}
	})

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	return collapseSpace(FoldWidth(strings.Join(parts, " ")))
}

// FoldWidth maps full-width digits and numeric separators to their ASCII
// counterparts. Everything else passes through unchanged.
func FoldWidth(s string) string {
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return '0' + (r - '０')
		case r == '，':
			return ','
		case r == '．':
			return '.'
		}
		return r
	}, s)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// window returns the context around the byte span [start, end) of s, widened
// by up to pad runes on each side. Pads are rune counts so Japanese text gets
// the same effective window as ASCII.
func window(s string, start, end, pad int) string {
	lo := start
	for i := 0; i < pad && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < pad && hi < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[hi:])
		hi += size
	}
	return s[lo:hi]
}

// headRunes returns at most n leading runes of s.
func headRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// snippetRunes is headRunes for debug output.
func snippetRunes(s string, n int) string {
	return headRunes(s, n)
}
