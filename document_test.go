package notestore

import (
	"errors"
	"testing"
)

// encodeRun wire-encodes one attribute run message.
func encodeRun(length uint64, fields func(b []byte) []byte) []byte {
	run := appendVarintField(nil, 1, length)
	if fields != nil {
		run = fields(run)
	}
	return run
}

// encodeNote wire-encodes a full note blob body (uncompressed): the outer
// document wrapper around text and runs.
func encodeNote(text string, runs ...[]byte) []byte {
	note := appendBytesField(nil, 2, []byte(text))
	for _, run := range runs {
		note = appendBytesField(note, 5, run)
	}
	doc := appendBytesField(nil, 3, note)
	return appendBytesField(nil, 2, doc)
}

func TestParseDocument(t *testing.T) {
	text := "Title\nbody"
	styled := encodeRun(6, func(b []byte) []byte {
		ps := appendVarintField(nil, 1, StyleHeading1)
		return appendBytesField(b, 2, ps)
	})
	linked := encodeRun(4, func(b []byte) []byte {
		b = appendVarintField(b, 5, 1) // bold
		b = appendVarintField(b, 6, 1) // underlined
		return appendBytesField(b, 9, []byte("https://example.com"))
	})

	v, err := Decode(encodeNote(text, styled, linked), NoteSchema)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseDocument(v)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != text {
		t.Fatalf("text %q", doc.Text)
	}
	if len(doc.Runs) != 2 {
		t.Fatalf("got %d runs", len(doc.Runs))
	}
	if ps := doc.Runs[0].ParagraphStyle; ps == nil || ps.Style != StyleHeading1 {
		t.Fatalf("run 0 paragraph style %+v", doc.Runs[0].ParagraphStyle)
	}
	r1 := doc.Runs[1]
	if r1.FontHints != 1 || r1.Underline != 1 || r1.Link != "https://example.com" {
		t.Fatalf("run 1 %+v", r1)
	}
}

func TestParseDocumentChecklist(t *testing.T) {
	run := encodeRun(5, func(b []byte) []byte {
		cl := appendBytesField(nil, 1, []byte("0123456789abcdef"))
		cl = appendVarintField(cl, 2, 1)
		ps := appendVarintField(nil, 1, StyleListCheckbox)
		ps = appendBytesField(ps, 5, cl)
		return appendBytesField(b, 2, ps)
	})
	v, err := Decode(encodeNote("todo\n", run), NoteSchema)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseDocument(v)
	if err != nil {
		t.Fatal(err)
	}
	ps := doc.Runs[0].ParagraphStyle
	if ps == nil || ps.Style != StyleListCheckbox || ps.Todo == nil || !ps.Todo.Done {
		t.Fatalf("paragraph style %+v", ps)
	}
}

func TestParseDocumentRunSumInvariant(t *testing.T) {
	// Runs covering 3 code units against 4 code units of text.
	v, err := Decode(encodeNote("abcd", encodeRun(3, nil)), NoteSchema)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseDocument(v); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v, want ErrMalformedInput", err)
	}
}

func TestParseDocumentCountsUTF16Units(t *testing.T) {
	// The emoji is one rune but two UTF-16 code units.
	text := "a\U0001F600"
	v, err := Decode(encodeNote(text, encodeRun(3, nil)), NoteSchema)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseDocument(v)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != text {
		t.Fatalf("text %q", doc.Text)
	}
}

func TestParseNoteFromBlob(t *testing.T) {
	body := encodeNote("hello\n", encodeRun(6, nil))
	doc, err := ParseNote(deflateBlob(t, body))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != "hello\n" || len(doc.Runs) != 1 {
		t.Fatalf("doc %+v", doc)
	}
}

func TestParseDocumentMissingDocument(t *testing.T) {
	if _, err := ParseDocument(Value{}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v, want ErrMalformedInput", err)
	}
}
