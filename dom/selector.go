package dom

import "strings"

// Matches returns true if the element matches the given selector.
// This is a simplified matcher covering the cases the grid sniffing needs:
// tag, .class, #id, [attr], [attr=value] (plus ~= |= ^= $= *= operators),
// compound combinations of those, and comma-separated lists.
func (n *Node) Matches(selector string) bool {
	if n.Type != ElementNode {
		return false
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return false
	}

	if strings.Contains(selector, ",") {
		for _, part := range strings.Split(selector, ",") {
			if n.matchesSingleSelector(strings.TrimSpace(part)) {
				return true
			}
		}
		return false
	}

	return n.matchesSingleSelector(selector)
}

func (n *Node) matchesSingleSelector(selector string) bool {
	if selector == "*" {
		return true
	}

	if strings.HasPrefix(selector, "#") {
		id := selector[1:]
		if !strings.ContainsAny(id, ".[") {
			return n.GetAttribute("id") == id
		}
	}

	if strings.HasPrefix(selector, ".") {
		className := selector[1:]
		if !strings.ContainsAny(className, ".#[") {
			return n.HasClass(className)
		}
	}

	if !strings.ContainsAny(selector, ".#[]") {
		return strings.EqualFold(n.Tag(), selector)
	}

	return n.matchesCompoundSelector(selector)
}

func (n *Node) matchesCompoundSelector(selector string) bool {
	current := selector
	tagName := ""

	idx := strings.IndexAny(current, ".#[")
	if idx == 0 {
		tagName = "*"
	} else if idx > 0 {
		tagName = current[:idx]
		current = current[idx:]
	} else {
		tagName = current
		current = ""
	}

	if tagName != "*" && !strings.EqualFold(n.Tag(), tagName) {
		return false
	}

	for len(current) > 0 {
		switch current[0] {
		case '.':
			end := strings.IndexAny(current[1:], ".#[")
			var className string
			if end == -1 {
				className = current[1:]
				current = ""
			} else {
				className = current[1 : end+1]
				current = current[end+1:]
			}
			if !n.HasClass(className) {
				return false
			}
		case '#':
			end := strings.IndexAny(current[1:], ".#[")
			var id string
			if end == -1 {
				id = current[1:]
				current = ""
			} else {
				id = current[1 : end+1]
				current = current[end+1:]
			}
			if n.GetAttribute("id") != id {
				return false
			}
		case '[':
			end := strings.Index(current, "]")
			if end == -1 {
				return false
			}
			attrSelector := current[1:end]
			current = current[end+1:]
			if !n.matchesAttributeSelector(attrSelector) {
				return false
			}
		default:
			return true
		}
	}

	return true
}

func (n *Node) matchesAttributeSelector(selector string) bool {
	if strings.Contains(selector, "=") {
		var attrName, op, value string

		for i, r := range selector {
			if r == '=' || r == '~' || r == '|' || r == '^' || r == '$' || r == '*' {
				if i+1 < len(selector) && selector[i+1] == '=' {
					attrName = selector[:i]
					op = string(selector[i : i+2])
					value = strings.Trim(selector[i+2:], "\"'")
				} else if r == '=' {
					attrName = selector[:i]
					op = "="
					value = strings.Trim(selector[i+1:], "\"'")
				}
				break
			}
		}

		if attrName == "" || !n.HasAttribute(attrName) {
			return false
		}
		attrValue := n.GetAttribute(attrName)

		switch op {
		case "=":
			return attrValue == value
		case "~=":
			for _, word := range strings.Fields(attrValue) {
				if word == value {
					return true
				}
			}
			return false
		case "|=":
			return attrValue == value || strings.HasPrefix(attrValue, value+"-")
		case "^=":
			return strings.HasPrefix(attrValue, value)
		case "$=":
			return strings.HasSuffix(attrValue, value)
		case "*=":
			return strings.Contains(attrValue, value)
		}
		return false
	}

	return n.HasAttribute(selector)
}

// Closest returns the closest ancestor element (or self) matching the selector.
func (n *Node) Closest(selector string) *Node {
	current := n
	for current != nil && current.Type == ElementNode {
		if current.Matches(selector) {
			return current
		}
		current = current.Parent
	}
	return nil
}

// QuerySelector returns the first descendant element matching the selector,
// in document order.
func (n *Node) QuerySelector(selector string) *Node {
	var result *Node
	n.traverseForSelector(selector, func(el *Node) bool {
		result = el
		return false
	})
	return result
}

// QuerySelectorAll returns all descendant elements matching the selector,
// in document order.
func (n *Node) QuerySelectorAll(selector string) []*Node {
	var results []*Node
	n.traverseForSelector(selector, func(el *Node) bool {
		results = append(results, el)
		return true
	})
	return results
}

// traverseForSelector walks descendants in document order, calling visit for
// each match. Traversal stops when visit returns false.
func (n *Node) traverseForSelector(selector string, visit func(*Node) bool) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == ElementNode {
			if child.Matches(selector) {
				if !visit(child) {
					return false
				}
			}
		}
		if !child.traverseForSelector(selector, visit) {
			return false
		}
	}
	return true
}
