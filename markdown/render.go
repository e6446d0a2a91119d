package markdown

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownNode is returned when Render meets a node kind it does not know.
	ErrUnknownNode = errors.New("unknown markdown node")
	// ErrHeadingLevel is returned for heading levels outside 1..6.
	ErrHeadingLevel = errors.New("heading level out of range")
)

// Render serializes nodes into CommonMark text. Blocks are separated by one
// blank line and the output ends with exactly one newline. An empty node
// sequence renders as an empty string.
func Render(nodes []Node) (string, error) {
	blocks := make([]string, 0, len(nodes))
	for i, n := range nodes {
		block, err := renderNode(n)
		if err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		return "", nil
	}

	return strings.Join(blocks, "\n\n") + "\n", nil
}

func renderNode(n Node) (string, error) {
	switch v := n.(type) {
	case Heading:
		return renderHeading(v)
	case *Heading:
		return renderHeading(*v)
	case Paragraph:
		return renderParagraph(v), nil
	case *Paragraph:
		return renderParagraph(*v), nil
	case CodeBlock:
		return renderCodeBlock(v), nil
	case *CodeBlock:
		return renderCodeBlock(*v), nil
	case Table:
		return renderTable(v), nil
	case *Table:
		return renderTable(*v), nil
	case OrderedList:
		return renderOrderedList(v), nil
	case *OrderedList:
		return renderOrderedList(*v), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
}

func renderHeading(h Heading) (string, error) {
	if h.Level < 1 || h.Level > 6 {
		return "", fmt.Errorf("%w: %d", ErrHeadingLevel, h.Level)
	}
	text := strings.Join(strings.Fields(normalizeLineEndings(h.Text)), " ")
	return strings.Repeat("#", h.Level) + " " + text, nil
}

func renderParagraph(p Paragraph) string {
	text := normalizeLineEndings(strings.Join(p.Spans, ""))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = escapeLineStart(strings.TrimRight(line, " \t"))
	}
	return strings.Join(lines, "\n")
}

// escapeLineStart keeps a paragraph line from opening a heading, quote, list
// or thematic break.
func escapeLineStart(line string) string {
	text := strings.TrimLeft(line, " ")
	if text == "" {
		return line
	}
	indent := line[:len(line)-len(text)]

	switch text[0] {
	case '#', '>':
		return indent + `\` + text
	case '-', '+', '*', '=', '_':
		if len(text) == 1 || text[1] == ' ' || text[1] == '\t' || strings.Trim(text, text[:1]+" \t") == "" {
			return indent + `\` + text
		}
		return line
	}

	digits := len(text) - len(strings.TrimLeft(text, "0123456789"))
	if digits == 0 || digits == len(text) {
		return line
	}
	if text[digits] != '.' && text[digits] != ')' {
		return line
	}
	if rest := text[digits+1:]; rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return line
	}
	return indent + text[:digits] + `\` + text[digits:]
}

func renderCodeBlock(c CodeBlock) string {
	text := strings.TrimRight(normalizeLineEndings(c.Text), "\n")
	fence := strings.Repeat("`", max(3, longestBacktickRun(text)+1))

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(strings.TrimSpace(c.Language))
	b.WriteString("\n")
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	b.WriteString(fence)
	return b.String()
}

func renderTable(t Table) string {
	var b strings.Builder

	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := range t.Columns {
			cell := ""
			if i < len(cells) {
				cell = escapeCell(cells[i])
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(" |")
		}
	}

	writeRow(t.Columns)
	b.WriteString("\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	for _, row := range t.Rows {
		b.WriteString("\n")
		writeRow(row)
	}

	return b.String()
}

func renderOrderedList(l OrderedList) string {
	lines := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		item = strings.Join(strings.Fields(normalizeLineEndings(item)), " ")
		lines = append(lines, strconv.Itoa(i+1)+". "+item)
	}
	return strings.Join(lines, "\n")
}

// escapeCell keeps a cell on one line and stops pipes from splitting it.
func escapeCell(value string) string {
	value = strings.TrimSpace(normalizeLineEndings(value))
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", "<br>")
}

// longestBacktickRun returns the length of the longest run of backticks in text.
func longestBacktickRun(text string) int {
	longest, current := 0, 0
	for _, r := range text {
		if r == '`' {
			current++
			longest = max(longest, current)
			continue
		}
		current = 0
	}
	return longest
}

// normalizeLineEndings converts CRLF/CR to LF.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
