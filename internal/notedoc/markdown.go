package notedoc

import (
	"fmt"
	"strings"
)

// Markdown renders the note document for export and for the in-app preview.
// Highlight reference markers are navigation-only and are dropped from the
// rendered output.
func (d *Document) Markdown() string {
	if d.Root == nil {
		return ""
	}
	var b strings.Builder
	for _, node := range d.Root.Content {
		renderBlock(&b, node, 0)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderBlock(b *strings.Builder, node *Node, depth int) {
	if node == nil {
		return
	}
	switch node.Type {
	case TypeHeading:
		level := 1
		if raw, ok := node.Attrs["level"].(float64); ok {
			level = int(raw)
		} else if raw, ok := node.Attrs["level"].(int); ok {
			level = raw
		}
		if level < 1 {
			level = 1
		}
		fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", level), renderInline(node.Content))
	case TypeBulletList:
		for _, item := range node.Content {
			renderBlock(b, item, depth)
		}
	case TypeListItem:
		indent := strings.Repeat("  ", depth)
		wroteMarker := false
		for _, child := range node.Content {
			switch child.Type {
			case TypeParagraph:
				line := renderInline(child.Content)
				if !wroteMarker {
					fmt.Fprintf(b, "%s- %s\n", indent, line)
					wroteMarker = true
				} else if line != "" {
					fmt.Fprintf(b, "%s  %s\n", indent, line)
				}
			case TypeBulletList:
				if !wroteMarker {
					fmt.Fprintf(b, "%s-\n", indent)
					wroteMarker = true
				}
				renderBlock(b, child, depth+1)
			}
		}
	case TypeParagraph:
		if line := renderInline(node.Content); line != "" {
			fmt.Fprintf(b, "%s\n\n", line)
		}
	}
}

func renderInline(nodes []*Node) string {
	var b strings.Builder
	for _, node := range nodes {
		if node == nil {
			continue
		}
		switch node.Type {
		case TypeText:
			if hasMark(node.Marks, MarkEm) {
				fmt.Fprintf(&b, "*%s*", node.Text)
			} else {
				b.WriteString(node.Text)
			}
		case TypeImage:
			if src, ok := node.Attrs["src"].(string); ok {
				fmt.Fprintf(&b, "![highlight](%s)", src)
			}
		case TypeHighlightRef:
			// navigation marker, not part of the export
		}
	}
	return b.String()
}

func hasMark(marks []Mark, kind string) bool {
	for _, mark := range marks {
		if mark.Type == kind {
			return true
		}
	}
	return false
}
