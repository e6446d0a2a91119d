// Package markdown holds the document node vocabulary produced by the
// documentation generator, an append-only Collector for building node
// sequences, and a renderer that serializes nodes into CommonMark text.
//
// Node is a closed set: Heading, Paragraph, CodeBlock, Table and OrderedList.
// Render handles every kind and rejects anything else.
package markdown

// Node is one block-level unit of a document.
type Node interface {
	node()
}

// Heading is an ATX heading. Level ranges from 1 to 6.
type Heading struct {
	Level int
	Text  string
}

// Paragraph is a block of inline text spans joined without separators.
type Paragraph struct {
	Spans []string
}

// CodeBlock is a fenced code block with an optional info string.
type CodeBlock struct {
	Text     string
	Language string
}

// Table is a pipe table. Each row holds one cell per column; missing or
// empty cells render blank.
type Table struct {
	Columns []string
	Rows    [][]string
}

// OrderedList is a numbered list of single-line items.
type OrderedList struct {
	Items []string
}

func (Heading) node()     {}
func (Paragraph) node()   {}
func (CodeBlock) node()   {}
func (Table) node()       {}
func (OrderedList) node() {}

// Text returns a single-span paragraph.
func Text(text string) Paragraph {
	return Paragraph{Spans: []string{text}}
}
