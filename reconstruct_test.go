package notestore

import (
	"errors"
	"reflect"
	"testing"
)

func bodyRun(length uint64) AttributeRun {
	return AttributeRun{Length: length}
}

func styledRun(length uint64, style int, indent uint) AttributeRun {
	return AttributeRun{Length: length, ParagraphStyle: &ParagraphStyle{Style: style, Indent: indent}}
}

func spanTexts(b Block) []string {
	texts := make([]string, len(b.Spans))
	for i, s := range b.Spans {
		texts[i] = s.Text
	}
	return texts
}

func TestReconstructHeadingAndBody(t *testing.T) {
	doc := &Document{
		Text: "Title\nbody text",
		Runs: []AttributeRun{styledRun(6, StyleHeading1, 0), bodyRun(9)},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks: %+v", len(blocks), blocks)
	}
	if blocks[0].Kind != BlockHeading1 || blocks[0].Spans[0].Text != "Title" {
		t.Fatalf("block 0: %+v", blocks[0])
	}
	if blocks[1].Kind != BlockParagraph || blocks[1].Spans[0].Text != "body text" {
		t.Fatalf("block 1: %+v", blocks[1])
	}
}

func TestReconstructMergesConsecutiveCodeParagraphs(t *testing.T) {
	doc := &Document{
		Text: "one\ntwo\n",
		Runs: []AttributeRun{styledRun(4, StyleCode, 0), styledRun(4, StyleCode, 0)},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Kind != BlockCode {
		t.Fatalf("got %+v, want a single code block", blocks)
	}
	if got := spanTexts(blocks[0]); !reflect.DeepEqual(got, []string{"one", "\n", "two"}) {
		t.Fatalf("code spans %q", got)
	}
}

func TestReconstructCodeNotMergedAcrossBody(t *testing.T) {
	doc := &Document{
		Text: "one\nmid\ntwo\n",
		Runs: []AttributeRun{
			styledRun(4, StyleCode, 0),
			bodyRun(4),
			styledRun(4, StyleCode, 0),
		},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks: %+v", len(blocks), blocks)
	}
	if blocks[0].Kind != BlockCode || blocks[1].Kind != BlockParagraph || blocks[2].Kind != BlockCode {
		t.Fatalf("kinds %v %v %v", blocks[0].Kind, blocks[1].Kind, blocks[2].Kind)
	}
}

func TestReconstructListNesting(t *testing.T) {
	doc := &Document{
		Text: "a\nb\nc\n",
		Runs: []AttributeRun{
			styledRun(2, StyleListBulleted, 0),
			styledRun(2, StyleListBulleted, 1),
			styledRun(2, StyleListBulleted, 0),
		},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	for i, wantDepth := range []int{0, 1, 0} {
		if blocks[i].Kind != BlockListItem || blocks[i].Depth != wantDepth {
			t.Fatalf("block %d: kind %v depth %d, want list depth %d", i, blocks[i].Kind, blocks[i].Depth, wantDepth)
		}
	}
}

func TestReconstructListKinds(t *testing.T) {
	doc := &Document{
		Text: "a\nb\nc\n",
		Runs: []AttributeRun{
			styledRun(2, StyleListDashed, 0),
			styledRun(2, StyleListNumbered, 0),
			styledRun(2, StyleListBulleted, 0),
		},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []ListKind{ListDashed, ListNumbered, ListBulleted}
	for i := range want {
		if blocks[i].List != want[i] {
			t.Fatalf("block %d list kind %v, want %v", i, blocks[i].List, want[i])
		}
	}
}

func TestReconstructCheckbox(t *testing.T) {
	run := styledRun(5, StyleListCheckbox, 0)
	run.ParagraphStyle.Todo = &Todo{Done: true}
	doc := &Document{Text: "done\n", Runs: []AttributeRun{run}}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Kind != BlockCheckItem || !blocks[0].Done {
		t.Fatalf("got %+v", blocks)
	}
}

func TestReconstructStyleMask(t *testing.T) {
	doc := &Document{
		Text: "x",
		Runs: []AttributeRun{{Length: 1, FontHints: 3, Underline: 1, Strikethrough: 1}},
	}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := SpanBold | SpanItalic | SpanUnderline | SpanStrikethrough
	if got := blocks[0].Spans[0].Style; got != want {
		t.Fatalf("style %b, want %b", got, want)
	}
}

func TestReconstructMissingAttachmentPlaceholder(t *testing.T) {
	doc := &Document{
		Text: "￼ and after",
		Runs: []AttributeRun{
			{Length: 1, AttachmentInfo: &AttachmentInfo{Identifier: "att-1"}},
			bodyRun(10),
		},
	}
	resolver := func(string) (Span, bool) { return Span{}, false }
	blocks, err := Reconstruct(doc, resolver)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || len(blocks[0].Spans) != 2 {
		t.Fatalf("got %+v", blocks)
	}
	if blocks[0].Spans[0].Text != "[missing attachment: att-1]" {
		t.Fatalf("placeholder %q", blocks[0].Spans[0].Text)
	}
	// Later runs still decode normally.
	if blocks[0].Spans[1].Text != " and after" {
		t.Fatalf("following span %q", blocks[0].Spans[1].Text)
	}
}

func TestReconstructAttachmentRenderAndLink(t *testing.T) {
	doc := &Document{
		Text: "￼",
		Runs: []AttributeRun{{
			Length:         1,
			FontHints:      1, // style is discarded when the attachment renders
			Link:           "https://example.com",
			AttachmentInfo: &AttachmentInfo{Identifier: "att-1"},
		}},
	}
	resolver := func(id string) (Span, bool) {
		if id != "att-1" {
			t.Fatalf("resolver got %q", id)
		}
		return Span{Text: "RENDERED", Raw: true}, true
	}
	blocks, err := Reconstruct(doc, resolver)
	if err != nil {
		t.Fatal(err)
	}
	span := blocks[0].Spans[0]
	if span.Text != "RENDERED" || !span.Raw || span.Style != 0 {
		t.Fatalf("span %+v", span)
	}
	// The link wraps outermost, around the attachment's render.
	if span.Link != "https://example.com" {
		t.Fatalf("link %q", span.Link)
	}
}

func TestReconstructFlushesTrailingParagraph(t *testing.T) {
	doc := &Document{Text: "tail", Runs: []AttributeRun{bodyRun(4)}}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Spans[0].Text != "tail" {
		t.Fatalf("got %+v", blocks)
	}
}

func TestReconstructBlankLine(t *testing.T) {
	doc := &Document{Text: "a\n\nb", Runs: []AttributeRun{bodyRun(4)}}
	blocks, err := Reconstruct(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks: %+v", len(blocks), blocks)
	}
	if len(blocks[1].Spans) != 0 {
		t.Fatalf("middle block should be empty, got %+v", blocks[1])
	}
}

func TestReconstructEmptyDocument(t *testing.T) {
	blocks, err := Reconstruct(&Document{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 0 {
		t.Fatalf("got %+v", blocks)
	}
}

func TestReconstructRunPastEndOfText(t *testing.T) {
	doc := &Document{Text: "ab", Runs: []AttributeRun{bodyRun(5)}}
	if _, err := Reconstruct(doc, nil); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v, want ErrMalformedInput", err)
	}
}

func TestReconstructSurrogateSplit(t *testing.T) {
	// The emoji is two UTF-16 code units; a run boundary after one unit
	// lands inside it.
	doc := &Document{Text: "\U0001F600", Runs: []AttributeRun{bodyRun(1), bodyRun(1)}}
	if _, err := Reconstruct(doc, nil); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v, want ErrMalformedInput", err)
	}
}
