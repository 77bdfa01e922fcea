// Package notedoc models the structured note document generated while
// reading, and interprets queued note-editing instructions against it.
package notedoc

import (
	"encoding/json"
	"strings"
)

// Node types used in the note document tree.
const (
	TypeDoc          = "doc"
	TypeHeading      = "heading"
	TypeBulletList   = "bulletList"
	TypeListItem     = "listItem"
	TypeParagraph    = "paragraph"
	TypeText         = "text"
	TypeImage        = "image"
	TypeHighlightRef = "highlightRef"
)

// MarkEm renders its text in emphasis.
const MarkEm = "em"

// Node is one node in the note document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark is a formatting annotation on a text node.
type Mark struct {
	Type string `json:"type"`
}

// Document wraps the root node of a note document.
type Document struct {
	Root *Node
}

// New returns an empty note document.
func New() *Document {
	return &Document{Root: &Node{Type: TypeDoc}}
}

// Parse restores a document from its serialized form. Empty or unparsable
// content yields a fresh empty document; persisted notes must never block
// opening a file.
func Parse(serialized string) *Document {
	if strings.TrimSpace(serialized) == "" {
		return New()
	}
	var root Node
	if err := json.Unmarshal([]byte(serialized), &root); err != nil || root.Type != TypeDoc {
		return New()
	}
	return &Document{Root: &root}
}

// Serialize returns the JSON form stored in the workspace state.
func (d *Document) Serialize() string {
	data, err := json.Marshal(d.Root)
	if err != nil {
		return ""
	}
	return string(data)
}

// IsEmpty reports whether the document has no content yet.
func (d *Document) IsEmpty() bool {
	return d.Root == nil || len(d.Root.Content) == 0
}

// HasHighlightRef reports whether a reference marker for the given highlight
// id already exists anywhere in the document. Each highlight is referenced by
// at most one marker.
func (d *Document) HasHighlightRef(id string) bool {
	if id == "" {
		return false
	}
	return hasRef(d.Root, id)
}

func hasRef(node *Node, id string) bool {
	if node == nil {
		return false
	}
	if node.Type == TypeHighlightRef {
		if ref, ok := node.Attrs["highlightId"].(string); ok && ref == id {
			return true
		}
	}
	for _, child := range node.Content {
		if hasRef(child, id) {
			return true
		}
	}
	return false
}

func textNode(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

func paragraph(children ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: children}
}

func refMarker(highlightID string) *Node {
	return &Node{
		Type:  TypeHighlightRef,
		Attrs: map[string]any{"highlightId": highlightID},
	}
}
