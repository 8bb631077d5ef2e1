package dom

import (
	"fmt"
	"strings"
)

// TokenError represents an invalid class token.
type TokenError struct {
	Message string
}

func (e *TokenError) Error() string {
	return e.Message
}

// validateToken checks if a class token is valid.
// Empty tokens and tokens containing ASCII whitespace are rejected.
func validateToken(token string) *TokenError {
	if token == "" {
		return &TokenError{Message: "the token provided must not be empty"}
	}
	if strings.ContainsAny(token, " \t\n\r\f") {
		return &TokenError{
			Message: fmt.Sprintf("the token provided (%q) contains whitespace, which is not valid in tokens", token),
		}
	}
	return nil
}

// ClassList returns the current class tokens, deduplicated, preserving order.
func (n *Node) ClassList() []string {
	value := n.GetAttribute("class")
	if value == "" {
		return nil
	}
	var tokens []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(value) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// HasClass returns true if the node's class attribute contains the token.
func (n *Node) HasClass(token string) bool {
	for _, tok := range n.ClassList() {
		if tok == token {
			return true
		}
	}
	return false
}

// AddClass adds a token to the class attribute if not already present.
func (n *Node) AddClass(token string) error {
	if err := validateToken(token); err != nil {
		return err
	}
	tokens := n.ClassList()
	for _, tok := range tokens {
		if tok == token {
			return nil
		}
	}
	n.SetAttribute("class", strings.Join(append(tokens, token), " "))
	return nil
}

// RemoveClass removes a token from the class attribute.
func (n *Node) RemoveClass(token string) error {
	if err := validateToken(token); err != nil {
		return err
	}
	tokens := n.ClassList()
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok != token {
			kept = append(kept, tok)
		}
	}
	if len(kept) == len(tokens) {
		return nil
	}
	if len(kept) == 0 {
		n.RemoveAttribute("class")
		return nil
	}
	n.SetAttribute("class", strings.Join(kept, " "))
	return nil
}
