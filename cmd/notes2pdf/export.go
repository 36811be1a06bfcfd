package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vasildeda/notes2pdf"
	"github.com/vasildeda/notes2pdf/export"
	"github.com/vasildeda/notes2pdf/store"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decode every note and write markdown, HTML, or a bundle",
	Long: `Export decodes every note in the database and writes the result.

Formats:
  markdown   one .md file per note under the output directory
  html       one .html file per note under the output directory
  bundle     a single .nexb file holding all notes and attachment payloads

Notes that fail to decode are reported and skipped; the export never stops
on a single bad note.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exportFormat != "" {
			cfg.Format = exportFormat
		}
		if exportOutput != "" {
			cfg.Output = exportOutput
		}

		st, err := store.Open(cfg.Database)
		if err != nil {
			fatal("opening database", err)
		}
		defer st.Close()

		ctx := context.Background()
		notes, err := st.ListNotes(ctx)
		if err != nil {
			fatal("listing notes", err)
		}

		switch cfg.Format {
		case "markdown", "html":
			err = exportFiles(ctx, st, notes)
		case "bundle":
			err = exportBundle(ctx, st, notes)
		default:
			fatal("export", fmt.Errorf("unknown format %q", cfg.Format))
		}
		if err != nil {
			fatal("export", err)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: markdown, html or bundle")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (or bundle file path)")
	rootCmd.AddCommand(exportCmd)
}

// renderNote decodes one note to markdown. Failures are isolated to this
// note.
func renderNote(ctx context.Context, st *store.Store, n store.Note) ([]byte, error) {
	doc, err := notestore.ParseNote(n.Data)
	if err != nil {
		return nil, err
	}
	blocks, err := notestore.Reconstruct(doc, attachmentResolver(ctx, st))
	if err != nil {
		return nil, err
	}
	return export.Markdown(blocks), nil
}

// attachmentResolver renders table attachments through the archive
// resolver and everything else as a reference link. Returning ok=false
// leaves a placeholder in the document.
func attachmentResolver(ctx context.Context, st *store.Store) notestore.AttachmentResolver {
	return func(identifier string) (notestore.Span, bool) {
		att, err := st.Attachment(ctx, identifier)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				slog.Warn("attachment lookup failed", "identifier", identifier, "error", err)
			}
			return notestore.Span{}, false
		}
		if att.TypeUTI == notestore.UTITable && len(att.MergeableData) > 0 {
			archive, err := notestore.ParseArchive(att.MergeableData)
			if err != nil {
				slog.Warn("table archive decode failed", "identifier", identifier, "error", err)
				return notestore.Span{}, false
			}
			table, err := archive.ResolveTable()
			if err != nil {
				slog.Warn("table resolution failed", "identifier", identifier, "error", err)
				return notestore.Span{}, false
			}
			return notestore.Span{Text: export.TableMarkdown(table), Raw: true}, true
		}
		name := att.Filename
		if name == "" {
			name = identifier
		}
		ref := "attachments/" + identifier + "/" + name
		return notestore.Span{Text: "![" + name + "](" + ref + ")", Raw: true}, true
	}
}

func exportFiles(ctx context.Context, st *store.Store, notes []store.Note) error {
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return err
	}
	exported, skipped := 0, 0
	for _, n := range notes {
		md, err := renderNote(ctx, st, n)
		if err != nil {
			slog.Error("skipping note", "pk", n.PK, "title", n.Title, "error", err)
			skipped++
			continue
		}

		name := fileName(n)
		var out []byte
		switch cfg.Format {
		case "html":
			name += ".html"
			out, err = export.HTML(n.Title, md)
			if err != nil {
				slog.Error("skipping note", "pk", n.PK, "title", n.Title, "error", err)
				skipped++
				continue
			}
		default:
			name += ".md"
			out = md
		}
		if err := os.WriteFile(filepath.Join(cfg.Output, name), out, 0o644); err != nil {
			return err
		}
		slog.Debug("exported note", "pk", n.PK, "file", name)
		exported++
	}
	slog.Info("export finished", "exported", exported, "skipped", skipped)
	return nil
}

func exportBundle(ctx context.Context, st *store.Store, notes []store.Note) error {
	bundle := &export.Bundle{
		Metadata:    map[string]any{"source": cfg.Database},
		Notes:       export.NoteBundle{BundleVersion: export.VersionV1},
		Attachments: export.AttachmentBundle{BundleVersion: export.VersionV1},
	}
	skipped := 0
	for _, n := range notes {
		md, err := renderNote(ctx, st, n)
		if err != nil {
			slog.Error("skipping note", "pk", n.PK, "title", n.Title, "error", err)
			skipped++
			continue
		}
		bundle.Notes.Notes = append(bundle.Notes.Notes, export.NoteDocument{
			ID:       n.Identifier,
			Title:    n.Title,
			Folder:   n.Folder,
			Modified: n.Modified,
			Markdown: md,
		})
	}
	if len(bundle.Notes.Notes) == 0 {
		return fmt.Errorf("no notes could be decoded")
	}

	comp, err := cfg.compression()
	if err != nil {
		return err
	}
	out := cfg.Output
	if !strings.HasSuffix(out, ".nexb") {
		out += ".nexb"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.Encode(f, bundle,
		export.WithNotesCompression(comp),
		export.WithAttachmentsCompression(comp)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("bundle written", "file", out, "notes", len(bundle.Notes.Notes), "skipped", skipped)
	return nil
}

// fileName derives a unique, filesystem-safe name for a note.
func fileName(n store.Note) string {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = "untitled"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, title)
	if len(safe) > 120 {
		safe = safe[:120]
	}
	return fmt.Sprintf("%06d-%s", n.PK, safe)
}
