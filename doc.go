// Package notestore decodes the proprietary rich-note storage representation
// used by an Apple-Notes-style database into portable document structures.
//
// A stored note is a deflate-compressed protobuf-style blob. Decoding a note
// runs through three layers:
//
//  1. A schema-driven binary decoder for the tag/length-prefixed wire format
//     (see [Decode] and [Schema]). The decoder knows nothing about notes; it
//     walks field tags, dispatches on wire type, and produces a generic
//     [Value] tree.
//  2. A typed projection of that tree into a [Document]: the note's flat
//     text plus its sequence of [AttributeRun] style annotations
//     (see [ParseNote] and [ParseDocument]).
//  3. A reconstructor that turns text+runs into a flat sequence of [Block]
//     values: headings, paragraphs, list items, checklist items and code
//     blocks carrying styled inline [Span]s (see [Reconstruct]).
//
// Tables are not stored as runs. A table-typed attachment references a
// second blob holding a conflict-free replicated object graph of registers,
// dictionaries and ordered sets. [ParseArchive] decodes that blob and
// [Archive.ResolveTable] resolves the graph into concrete rows, columns and
// cells, applying the ordered-set tombstone filter along the way.
//
// # Basic Usage
//
//	doc, err := notestore.ParseNote(blob)
//	if err != nil {
//		return err
//	}
//	blocks, err := notestore.Reconstruct(doc, resolver)
//
// where resolver maps attachment identifiers to rendered content (a table
// attachment typically routes through [ParseArchive] and
// [Archive.ResolveTable]).
//
// # Error Handling
//
// All failures of the binary layer wrap [ErrMalformedInput]; all failures of
// the archive layer wrap [ErrUnresolvableArchive]. A missing attachment is
// not an error: the resolver reports "no value" and reconstruction emits a
// placeholder span and continues. Each call decodes one note in isolation
// and never leaves partial state behind.
package notestore
