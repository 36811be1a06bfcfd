package notestore

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// StyleMask is the inline style bitmask of a span. The low four bits
// independently select bold, italic, underline and strikethrough.
type StyleMask uint8

const (
	SpanBold          StyleMask = 1 << 0
	SpanItalic        StyleMask = 1 << 1
	SpanUnderline     StyleMask = 1 << 2
	SpanStrikethrough StyleMask = 1 << 3
)

// Span is one styled fragment of a block. Raw marks pre-rendered content
// (an attachment's own rendering); renderers emit Raw text verbatim and
// ignore Style. Link, when set, wraps the whole span and is always the
// outermost transform.
type Span struct {
	Text  string
	Style StyleMask
	Link  string
	Raw   bool
}

// BlockKind tags a reconstructed block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading1
	BlockHeading2
	BlockCode
	BlockListItem
	BlockCheckItem
)

// ListKind distinguishes the bullet style of a BlockListItem.
type ListKind int

const (
	ListBulleted ListKind = iota
	ListDashed
	ListNumbered
)

// Block is one structured unit of a reconstructed document. Depth is the
// list nesting depth (zero-based) for list and checklist items; Done is the
// checkbox state of a BlockCheckItem.
type Block struct {
	Kind  BlockKind
	List  ListKind
	Depth int
	Done  bool
	Spans []Span
}

// AttachmentResolver maps an attachment identifier to its rendered span.
// Returning ok=false means the attachment cannot be resolved; that is an
// expected outcome, not an error, and yields a placeholder span.
type AttachmentResolver func(identifier string) (Span, bool)

// Reconstruct turns a document's flat text plus attribute runs into an
// ordered block sequence.
//
// Paragraph boundaries are the newlines embedded in the text. The run
// supplying a paragraph's first fragment picks the block kind and, for list
// items, the nesting depth. Consecutive code paragraphs merge into a single
// code block with embedded line breaks. Inline styling applies first,
// attachment substitution replaces the styled fragment outright, and a link
// wraps outermost.
func Reconstruct(doc *Document, resolve AttachmentResolver) ([]Block, error) {
	sm := &reconstructor{resolve: resolve}
	cut := doc.Text
	for i := range doc.Runs {
		run := &doc.Runs[i]
		frag, rest, err := cutRun(cut, run.Length)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		cut = rest
		sm.feed(frag, run)
	}
	sm.flush()
	return sm.out, nil
}

// cutRun splits off the first n UTF-16 code units of text. A run boundary
// that lands inside a surrogate pair is malformed.
func cutRun(text string, n uint64) (frag, rest string, err error) {
	var units uint64
	for i, r := range text {
		if units == n {
			return text[:i], text[i:], nil
		}
		units += uint64(utf16.RuneLen(r))
		if units > n {
			return "", "", fmt.Errorf("%w: run boundary splits a surrogate pair", ErrMalformedInput)
		}
	}
	if units != n {
		return "", "", fmt.Errorf("%w: run extends %d code units past end of text", ErrMalformedInput, n-units)
	}
	return text, "", nil
}

// listFrame is one open list container on the nesting stack.
type listFrame struct {
	kind  BlockKind
	list  ListKind
	check bool
}

// reconstructor is the paragraph state machine. A nil open block is the
// "between paragraphs" state.
type reconstructor struct {
	resolve AttachmentResolver
	out     []Block
	open    *Block
	stack   []listFrame
}

// feed processes one run's text fragment. Embedded newlines close the
// current paragraph; text between them becomes styled spans of the open
// paragraph, opening one first when needed.
func (sm *reconstructor) feed(frag string, run *AttributeRun) {
	for len(frag) > 0 {
		nl := strings.IndexByte(frag, '\n')
		if nl < 0 {
			sm.text(frag, run)
			return
		}
		if nl > 0 {
			sm.text(frag[:nl], run)
		} else if sm.open == nil {
			// Newline with no preceding fragment: an empty paragraph.
			sm.openParagraph(run)
		}
		sm.flush()
		frag = frag[nl+1:]
	}
}

func (sm *reconstructor) text(frag string, run *AttributeRun) {
	if sm.open == nil {
		sm.openParagraph(run)
	}
	span := Span{Text: frag, Style: spanStyle(run)}
	if info := run.AttachmentInfo; info != nil {
		rendered, ok := Span{}, false
		if sm.resolve != nil {
			rendered, ok = sm.resolve(info.Identifier)
		}
		if ok {
			// The attachment's own rendering replaces the styled fragment.
			span = rendered
		} else {
			span = Span{Text: "[missing attachment: " + info.Identifier + "]"}
		}
	}
	if run.Link != "" {
		span.Link = run.Link
	}
	sm.open.Spans = append(sm.open.Spans, span)
}

// openParagraph enters the in-paragraph state. The first fragment's run
// picks the block kind and list depth.
func (sm *reconstructor) openParagraph(run *AttributeRun) {
	style, indent := StyleNone, uint(0)
	var todo *Todo
	if ps := run.ParagraphStyle; ps != nil {
		style, indent, todo = ps.Style, ps.Indent, ps.Todo
	}

	b := Block{Kind: BlockParagraph}
	switch style {
	case StyleHeading1:
		b.Kind = BlockHeading1
	case StyleHeading2:
		b.Kind = BlockHeading2
	case StyleCode:
		b.Kind = BlockCode
	case StyleListBulleted, StyleListDashed, StyleListNumbered:
		b.Kind = BlockListItem
		b.List = listKind(style)
	case StyleListCheckbox:
		b.Kind = BlockCheckItem
		b.Done = todo != nil && todo.Done
	}

	if b.Kind == BlockListItem || b.Kind == BlockCheckItem {
		b.Depth = sm.enterList(b, int(indent))
	} else {
		sm.stack = sm.stack[:0]
	}
	sm.open = &b
}

func listKind(style int) ListKind {
	switch style {
	case StyleListDashed:
		return ListDashed
	case StyleListNumbered:
		return ListNumbered
	default:
		return ListBulleted
	}
}

// enterList places a list item on the container stack: pop to a shallower
// indent, reuse the top container when depth and kind match, open nested
// containers for a deeper indent. Returns the item's nesting depth.
func (sm *reconstructor) enterList(b Block, indent int) int {
	frame := listFrame{kind: b.Kind, list: b.List, check: b.Kind == BlockCheckItem}
	for len(sm.stack)-1 > indent {
		sm.stack = sm.stack[:len(sm.stack)-1]
	}
	if len(sm.stack)-1 == indent {
		top := sm.stack[len(sm.stack)-1]
		if top.kind != frame.kind || top.list != frame.list {
			sm.stack[len(sm.stack)-1] = frame
		}
	}
	for len(sm.stack)-1 < indent {
		sm.stack = append(sm.stack, frame)
	}
	return len(sm.stack) - 1
}

// flush closes the open paragraph, merging consecutive code paragraphs into
// one block separated by embedded line breaks.
func (sm *reconstructor) flush() {
	if sm.open == nil {
		return
	}
	b := *sm.open
	sm.open = nil
	if b.Kind == BlockCode && len(sm.out) > 0 && sm.out[len(sm.out)-1].Kind == BlockCode {
		prev := &sm.out[len(sm.out)-1]
		prev.Spans = append(prev.Spans, Span{Text: "\n"})
		prev.Spans = append(prev.Spans, b.Spans...)
		return
	}
	sm.out = append(sm.out, b)
}

func spanStyle(run *AttributeRun) StyleMask {
	mask := StyleMask(run.FontHints & 0x3)
	if run.Underline != 0 {
		mask |= SpanUnderline
	}
	if run.Strikethrough != 0 {
		mask |= SpanStrikethrough
	}
	return mask
}
