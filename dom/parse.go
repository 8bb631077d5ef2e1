package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses HTML from a string and returns a document node.
func Parse(htmlContent string) (*Node, error) {
	return ParseReader(strings.NewReader(htmlContent))
}

// ParseReader parses HTML from an io.Reader and returns a document node.
func ParseReader(r io.Reader) (*Node, error) {
	netNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return convertNode(netNode), nil
}

// ParseFragment parses an HTML fragment in the context of a parent element.
func ParseFragment(fragment string, context *Node) ([]*Node, error) {
	var contextNode *html.Node
	if context != nil && context.Type == ElementNode {
		contextNode = &html.Node{
			Type:     html.ElementNode,
			DataAtom: context.DataAtom,
			Data:     context.Data,
		}
	}
	netNodes, err := html.ParseFragment(strings.NewReader(fragment), contextNode)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, len(netNodes))
	for i, nn := range netNodes {
		nodes[i] = convertNode(nn)
	}
	return nodes, nil
}

// convertNode converts a golang.org/x/net/html node to our Node type.
func convertNode(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	node := &Node{
		Type:      convertNodeType(n.Type),
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
	}
	for _, attr := range n.Attr {
		node.Attributes = append(node.Attributes, Attribute{
			Namespace: attr.Namespace,
			Key:       strings.ToLower(attr.Key),
			Value:     attr.Val,
		})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(convertNode(c))
	}
	return node
}

func convertNodeType(nt html.NodeType) NodeType {
	switch nt {
	case html.ErrorNode:
		return ErrorNode
	case html.TextNode:
		return TextNode
	case html.DocumentNode:
		return DocumentNode
	case html.ElementNode:
		return ElementNode
	case html.CommentNode:
		return CommentNode
	case html.DoctypeNode:
		return DoctypeNode
	default:
		return ErrorNode
	}
}
