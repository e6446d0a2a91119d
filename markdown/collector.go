package markdown

// Collector accumulates nodes in emission order. It never reorders or
// removes what was appended. A Collector is not safe for concurrent use.
type Collector struct {
	nodes []Node
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Append adds node and returns it.
func (c *Collector) Append(node Node) Node {
	c.nodes = append(c.nodes, node)
	return node
}

// AppendOptionalText adds a paragraph when text is non-nil. An empty string
// still produces a paragraph.
func (c *Collector) AppendOptionalText(text *string) {
	if text == nil {
		return
	}
	c.Append(Text(*text))
}

// AppendCodeBlock adds a fenced code block tagged with language, which may be empty.
func (c *Collector) AppendCodeBlock(text, language string) {
	c.Append(CodeBlock{Text: text, Language: language})
}

// Extend appends every node of other in order and leaves other empty.
func (c *Collector) Extend(other *Collector) {
	if other == nil || other == c {
		return
	}
	c.nodes = append(c.nodes, other.nodes...)
	other.nodes = nil
}

// Nodes returns the accumulated nodes.
func (c *Collector) Nodes() []Node {
	return c.nodes
}

// Len returns the number of accumulated nodes.
func (c *Collector) Len() int {
	return len(c.nodes)
}
