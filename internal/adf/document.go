// Package adf builds Atlassian Document Format trees from plain text.
package adf

import (
	"regexp"
	"strings"
)

const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"

	Version = 1
)

// Node is an inline node inside a paragraph: either text or a hard break.
type Node struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Paragraph struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Document is the top-level ADF envelope sent as an issue description.
type Document struct {
	Version int         `json:"version"`
	Type    string      `json:"type"`
	Content []Paragraph `json:"content"`
}

var reParagraphBreak = regexp.MustCompile(`\n\n+`)

// Convert turns free text into a document. Blank-line runs separate
// paragraphs, single newlines become hard breaks, and empty lines are dropped.
func Convert(text string) Document {
	doc := Document{
		Version: Version,
		Type:    TypeDoc,
		Content: []Paragraph{},
	}

	for _, block := range reParagraphBreak.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var nodes []Node
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if len(nodes) > 0 {
				nodes = append(nodes, Node{Type: TypeHardBreak})
			}
			nodes = append(nodes, Node{Type: TypeText, Text: line})
		}

		if len(nodes) == 0 {
			continue
		}
		doc.Content = append(doc.Content, Paragraph{Type: TypeParagraph, Content: nodes})
	}

	return doc
}

// Valid reports whether d has the fixed envelope and only well-formed
// paragraphs: non-empty, starting and ending with text, breaks only between
// text nodes.
func (d Document) Valid() bool {
	if d.Version != Version || d.Type != TypeDoc {
		return false
	}
	for _, p := range d.Content {
		if p.Type != TypeParagraph || len(p.Content) == 0 {
			return false
		}
		for i, n := range p.Content {
			switch n.Type {
			case TypeText:
				if n.Text == "" {
					return false
				}
			case TypeHardBreak:
				if i == 0 || i == len(p.Content)-1 || p.Content[i-1].Type != TypeText {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

// PlainText renders the document back to text, one blank line between
// paragraphs.
func (d Document) PlainText() string {
	var sb strings.Builder
	for i, p := range d.Content {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for _, n := range p.Content {
			switch n.Type {
			case TypeText:
				sb.WriteString(n.Text)
			case TypeHardBreak:
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
