// Package export renders reconstructed notes and packages them for
// exchange.
//
// Two renderers turn [notestore.Block] sequences into portable output:
// [Markdown] and [HTML]. The NEXB container ([Encode], [Decode]) bundles the
// rendered notes together with their attachment payloads in a single file:
// a fixed header, an optional JSON metadata block, and two optionally
// compressed gob sections. Size limits are enforced throughout decoding to
// keep hostile bundles from exhausting memory.
package export
