package dom

import "strings"

// CellText returns the text a table cell contributes to stats and export.
// Precedence: the cell's title attribute, then its rendered inline text with
// whitespace collapsed, then the target of a nested link.
func CellText(n *Node) string {
	if n == nil {
		return ""
	}
	if t := strings.TrimSpace(n.GetAttribute("title")); t != "" {
		return t
	}
	if t := collapseWhitespace(n.TextContent()); t != "" {
		return t
	}
	if link := linkTarget(n); link != "" {
		return link
	}
	return ""
}

// linkTarget returns the href of the cell itself or its first nested anchor.
func linkTarget(n *Node) string {
	if n.Tag() == "a" {
		return strings.TrimSpace(n.GetAttribute("href"))
	}
	if a := n.QuerySelector("a"); a != nil {
		return strings.TrimSpace(a.GetAttribute("href"))
	}
	return ""
}

// collapseWhitespace trims the string and collapses interior whitespace runs
// into single spaces, approximating rendered inline text.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
