package notestore

import (
	"fmt"
	"unicode/utf16"
)

// Paragraph style codes carried by AttributeRun.ParagraphStyle.Style.
// Absent (StyleNone) means body text.
const (
	StyleNone         = -1
	StyleHeading1     = 0
	StyleHeading2     = 1
	StyleCode         = 4
	StyleListBulleted = 100
	StyleListDashed   = 101
	StyleListNumbered = 102
	StyleListCheckbox = 103
)

// Todo is the checklist state of a checkbox paragraph.
type Todo struct {
	UUID []byte
	Done bool
}

// ParagraphStyle is the block-level annotation of an attribute run.
type ParagraphStyle struct {
	Style  int // one of the Style* codes, StyleNone for body text
	Indent uint
	Todo   *Todo
}

// AttachmentInfo references an out-of-line attachment object.
type AttachmentInfo struct {
	Identifier string
	TypeUTI    string
}

// AttributeRun annotates a contiguous span of the document text. Length is
// counted in UTF-16 code units, the encoder's native metric.
type AttributeRun struct {
	Length         uint64
	ParagraphStyle *ParagraphStyle
	FontHints      uint64
	Underline      uint64
	Strikethrough  uint64
	Link           string
	AttachmentInfo *AttachmentInfo
}

// Document is the typed projection of a decoded note blob: the flat note
// text plus its ordered attribute runs.
type Document struct {
	Text string
	Runs []AttributeRun
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ParseNote opens a stored note blob and projects it into a Document.
func ParseNote(blob []byte) (*Document, error) {
	raw, err := OpenBlob(blob, 0)
	if err != nil {
		return nil, err
	}
	v, err := Decode(raw, NoteSchema)
	if err != nil {
		return nil, err
	}
	return ParseDocument(v)
}

// ParseDocument projects a Value decoded against NoteSchema into a Document.
// It enforces the run-length invariant: the run lengths must sum exactly to
// the text length in UTF-16 code units.
func ParseDocument(v Value) (*Document, error) {
	docMsg, ok := v.Msg("document")
	if !ok {
		return nil, fmt.Errorf("%w: note has no document field", ErrMalformedInput)
	}
	note, ok := docMsg.Msg("note")
	if !ok {
		return nil, fmt.Errorf("%w: document has no note field", ErrMalformedInput)
	}

	doc := &Document{}
	doc.Text, _ = note.Str("noteText")

	for i, entry := range note.List("attributeRun") {
		rv, ok := entry.(Value)
		if !ok {
			return nil, fmt.Errorf("%w: attribute run %d is not a message", ErrMalformedInput, i)
		}
		run, err := parseRun(rv)
		if err != nil {
			return nil, fmt.Errorf("attribute run %d: %w", i, err)
		}
		doc.Runs = append(doc.Runs, run)
	}

	var total uint64
	for _, run := range doc.Runs {
		total += run.Length
	}
	if textLen := uint64(utf16Len(doc.Text)); total != textLen {
		return nil, fmt.Errorf("%w: run lengths sum to %d, text is %d code units",
			ErrMalformedInput, total, textLen)
	}
	return doc, nil
}

func parseRun(v Value) (AttributeRun, error) {
	var run AttributeRun
	length, ok := v.Uint("length")
	if !ok {
		return run, fmt.Errorf("%w: missing length", ErrMalformedInput)
	}
	run.Length = length
	run.FontHints, _ = v.Uint("fontHints")
	run.Underline, _ = v.Uint("underlined")
	run.Strikethrough, _ = v.Uint("strikethrough")
	run.Link, _ = v.Str("link")

	if ps, ok := v.Msg("paragraphStyle"); ok {
		style := &ParagraphStyle{Style: StyleNone}
		if st, ok := ps.Uint("styleType"); ok {
			style.Style = int(st)
		}
		if indent, ok := ps.Uint("indentAmount"); ok {
			style.Indent = uint(indent)
		}
		if cl, ok := ps.Msg("checklist"); ok {
			todo := &Todo{}
			todo.UUID, _ = cl.Bytes("uuid")
			done, _ := cl.Uint("done")
			todo.Done = done != 0
			style.Todo = todo
		}
		run.ParagraphStyle = style
	}

	if ai, ok := v.Msg("attachmentInfo"); ok {
		info := &AttachmentInfo{}
		info.Identifier, _ = ai.Str("attachmentIdentifier")
		info.TypeUTI, _ = ai.Str("typeUTI")
		run.AttachmentInfo = info
	}
	return run, nil
}
