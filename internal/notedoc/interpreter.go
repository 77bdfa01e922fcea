package notedoc

const (
	minNestingLevel = 1
	maxNestingLevel = 3
)

// Apply executes a single instruction against the document. Instructions are
// applied strictly in the order they were enqueued; Apply never fails, it
// degrades to the closest sensible edit instead.
func (d *Document) Apply(ins Instruction) {
	if d.Root == nil {
		d.Root = &Node{Type: TypeDoc}
	}
	switch ins.Type {
	case InsertTitle:
		d.insertTitle(ins.Payload)
	case InsertPDFName:
		d.insertPDFName(ins.Payload)
	case InsertBullet:
		d.insertLeaf(paragraphForBullet(ins, d), ins.Level)
	case InsertImage:
		d.insertLeaf(paragraphForImage(ins, d), ins.Level)
	}
}

func (d *Document) insertTitle(text string) {
	heading := &Node{
		Type:    TypeHeading,
		Attrs:   map[string]any{"level": 1},
		Content: []*Node{textNode(text)},
	}
	d.Root.Content = append(d.Root.Content, heading)
}

// insertPDFName adds a top-level list item holding the document's display
// name in emphasis. The list it lands in becomes the outline root for all
// following bullets.
func (d *Document) insertPDFName(name string) {
	root := d.outlineRoot()
	item := &Node{
		Type:    TypeListItem,
		Content: []*Node{paragraph(textNode(name, Mark{Type: MarkEm}))},
	}
	root.Content = append(root.Content, item)
}

// insertLeaf creates a new list item at the outline root and sinks it to
// exactly the requested nesting level, regardless of how deep the previous
// bullet sits. Captured highlights always land at the configured depth.
func (d *Document) insertLeaf(content *Node, level int) {
	if level < minNestingLevel {
		level = minNestingLevel
	}
	if level > maxNestingLevel {
		level = maxNestingLevel
	}

	list := d.outlineRoot()
	for depth := minNestingLevel; depth < level; depth++ {
		parent := lastListItem(list)
		if parent == nil {
			parent = &Node{Type: TypeListItem, Content: []*Node{paragraph()}}
			list.Content = append(list.Content, parent)
		}
		list = childList(parent)
	}

	item := &Node{Type: TypeListItem, Content: []*Node{content}}
	list.Content = append(list.Content, item)
}

func paragraphForBullet(ins Instruction, d *Document) *Node {
	children := []*Node{textNode(ins.Payload)}
	if ins.HighlightID != "" && !d.HasHighlightRef(ins.HighlightID) {
		children = append(children, refMarker(ins.HighlightID))
	}
	return paragraph(children...)
}

func paragraphForImage(ins Instruction, d *Document) *Node {
	image := &Node{Type: TypeImage, Attrs: map[string]any{"src": ins.Payload}}
	children := []*Node{image}
	if ins.HighlightID != "" && !d.HasHighlightRef(ins.HighlightID) {
		children = append(children, refMarker(ins.HighlightID))
	}
	return paragraph(children...)
}

// outlineRoot returns the last top-level bullet list, creating one when the
// document has none yet.
func (d *Document) outlineRoot() *Node {
	for i := len(d.Root.Content) - 1; i >= 0; i-- {
		if d.Root.Content[i].Type == TypeBulletList {
			return d.Root.Content[i]
		}
	}
	list := &Node{Type: TypeBulletList}
	d.Root.Content = append(d.Root.Content, list)
	return list
}

func lastListItem(list *Node) *Node {
	for i := len(list.Content) - 1; i >= 0; i-- {
		if list.Content[i].Type == TypeListItem {
			return list.Content[i]
		}
	}
	return nil
}

// childList returns the nested bullet list inside a list item, creating it
// when the item has none.
func childList(item *Node) *Node {
	for i := len(item.Content) - 1; i >= 0; i-- {
		if item.Content[i].Type == TypeBulletList {
			return item.Content[i]
		}
	}
	list := &Node{Type: TypeBulletList}
	item.Content = append(item.Content, list)
	return list
}
