// Package dom provides the slim DOM layer the selection engine operates on.
// It wraps golang.org/x/net/html parse trees in a node type that carries
// attributes, class tokens, simplified selector matching and the layout
// rects the host reports for cells.
package dom

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// NodeType represents the type of a node.
type NodeType int

const (
	ErrorNode NodeType = iota
	TextNode
	DocumentNode
	ElementNode
	CommentNode
	DoctypeNode
)

// Attribute represents an attribute on an element.
type Attribute struct {
	Namespace string
	Key       string
	Value     string
}

// Node represents a node in the document tree.
type Node struct {
	Type       NodeType
	Data       string    // For elements: tag name; for text: text content
	DataAtom   atom.Atom // Atom for known HTML elements
	Namespace  string
	Attributes []Attribute

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node

	rect    *Rect
	hasRect bool
}

// AppendChild adds a child node to the end of this node's children.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	c.PrevSibling = n.LastChild
	c.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// RemoveChild removes a child node from this node's children.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		return
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	} else {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	} else {
		n.LastChild = c.PrevSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// Children returns a slice of all child nodes.
func (n *Node) Children() []*Node {
	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

// ChildElements returns a slice of all element child nodes.
func (n *Node) ChildElements() []*Node {
	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			children = append(children, c)
		}
	}
	return children
}

// PreviousElementSibling returns the previous sibling element, or nil.
func (n *Node) PreviousElementSibling() *Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == ElementNode {
			return s
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element, or nil.
func (n *Node) NextElementSibling() *Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == ElementNode {
			return s
		}
	}
	return nil
}

// GetAttribute returns the value of the specified attribute, or empty string
// if not found. Attribute names are matched case-insensitively, as the parser
// lowercases them for HTML documents.
func (n *Node) GetAttribute(key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// SetAttribute sets an attribute value, creating it if it doesn't exist.
func (n *Node) SetAttribute(key, value string) {
	key = strings.ToLower(key)
	for i, attr := range n.Attributes {
		if attr.Key == key {
			n.Attributes[i].Value = value
			return
		}
	}
	n.Attributes = append(n.Attributes, Attribute{Key: key, Value: value})
}

// HasAttribute returns true if the node has the specified attribute.
func (n *Node) HasAttribute(key string) bool {
	key = strings.ToLower(key)
	for _, attr := range n.Attributes {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// RemoveAttribute removes an attribute from the node.
func (n *Node) RemoveAttribute(key string) {
	key = strings.ToLower(key)
	for i, attr := range n.Attributes {
		if attr.Key == key {
			n.Attributes = append(n.Attributes[:i], n.Attributes[i+1:]...)
			return
		}
	}
}

// TextContent returns the text content of a node and its descendants.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.collectTextContent(&sb)
	return sb.String()
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.collectTextContent(sb)
	}
}

// Tag returns the lowercase tag name for element nodes, empty otherwise.
func (n *Node) Tag() string {
	if n.Type != ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}
