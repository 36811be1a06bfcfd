package export

import (
	"strings"

	"github.com/vasildeda/notes2pdf"
)

// Markdown renders a reconstructed block sequence as markdown. Inline
// styles wrap in a fixed order (bold, italic, underline, strikethrough),
// raw spans pass through verbatim, and links wrap outermost. Underline has
// no markdown syntax and renders as a <u> element.
func Markdown(blocks []notestore.Block) []byte {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			if tightPair(blocks[i-1], b) {
				sb.WriteByte('\n')
			} else {
				sb.WriteString("\n\n")
			}
		}
		writeBlock(&sb, b)
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// tightPair reports whether two adjacent blocks belong to the same list and
// must not be separated by a blank line.
func tightPair(prev, next notestore.Block) bool {
	listy := func(b notestore.Block) bool {
		return b.Kind == notestore.BlockListItem || b.Kind == notestore.BlockCheckItem
	}
	return listy(prev) && listy(next)
}

func writeBlock(sb *strings.Builder, b notestore.Block) {
	switch b.Kind {
	case notestore.BlockHeading1:
		sb.WriteString("# ")
		sb.WriteString(renderSpans(b.Spans))
	case notestore.BlockHeading2:
		sb.WriteString("## ")
		sb.WriteString(renderSpans(b.Spans))
	case notestore.BlockCode:
		sb.WriteString("```\n")
		for _, s := range b.Spans {
			sb.WriteString(s.Text)
		}
		sb.WriteString("\n```")
	case notestore.BlockListItem:
		sb.WriteString(strings.Repeat("    ", b.Depth))
		sb.WriteString(listMarker(b.List))
		sb.WriteByte(' ')
		sb.WriteString(renderSpans(b.Spans))
	case notestore.BlockCheckItem:
		sb.WriteString(strings.Repeat("    ", b.Depth))
		if b.Done {
			sb.WriteString("- [x] ")
		} else {
			sb.WriteString("- [ ] ")
		}
		sb.WriteString(renderSpans(b.Spans))
	default:
		sb.WriteString(renderSpans(b.Spans))
	}
}

func listMarker(kind notestore.ListKind) string {
	switch kind {
	case notestore.ListDashed:
		return "-"
	case notestore.ListNumbered:
		return "1."
	default:
		return "*"
	}
}

func renderSpans(spans []notestore.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(renderSpan(s))
	}
	return sb.String()
}

func renderSpan(s notestore.Span) string {
	text := s.Text
	if !s.Raw && text != "" {
		if s.Style&notestore.SpanBold != 0 {
			text = "**" + text + "**"
		}
		if s.Style&notestore.SpanItalic != 0 {
			text = "*" + text + "*"
		}
		if s.Style&notestore.SpanUnderline != 0 {
			text = "<u>" + text + "</u>"
		}
		if s.Style&notestore.SpanStrikethrough != 0 {
			text = "~~" + text + "~~"
		}
	}
	if s.Link != "" {
		text = "[" + text + "](" + s.Link + ")"
	}
	return text
}

// TableMarkdown renders a resolved table as a GFM table, first row as the
// header row. Missing cells render empty; an empty table renders as "".
func TableMarkdown(t *notestore.Table) string {
	if t == nil || len(t.Rows) == 0 || len(t.Columns) == 0 {
		return ""
	}
	var sb strings.Builder
	writeRow := func(row string) {
		sb.WriteByte('|')
		for _, col := range t.Columns {
			sb.WriteByte(' ')
			sb.WriteString(tableCell(t.Cell(col, row)))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}
	writeRow(t.Rows[0])
	sb.WriteByte('|')
	for range t.Columns {
		sb.WriteString(" --- |")
	}
	sb.WriteByte('\n')
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
