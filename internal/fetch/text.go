package fetch

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func getText(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// text inside a <br> sibling chain would otherwise be glued together
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte(' ')
	}
	child := node.FirstChild
	for child != nil {
		getText(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

func cleanText(s string) string {
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// selectionText returns the cleaned text of the first node in sel.
func selectionText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var buffer bytes.Buffer
	getText(sel.Get(0), &buffer)
	return cleanText(buffer.String())
}
