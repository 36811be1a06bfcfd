package export

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a NEXB bundle from r.
//
// Decode validates the fixed header, parses the optional JSON metadata
// block, then reads, decompresses and gob-decodes the notes and attachments
// sections. The header's note and attachment counts must match the section
// contents, and the fully decoded bundle passes the same validation Encode
// applies.
//
// Decode returns ErrInvalidMagic if r does not hold a NEXB file,
// ErrUnsupportedVersion for versions other than 1, ErrLimitExceeded when a
// size limit is exceeded, and ErrValidation when the bundle fails
// validation.
func Decode(r io.Reader, opts ...ReadOption) (*Bundle, error) {
	cfg := readConfig{limits: defaultLimits(), verifyHashes: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	h, err := readFixedHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	if h.Version != VersionV1 {
		return nil, ErrUnsupportedVersion
	}
	if h.MetadataLength > cfg.limits.MaxMetadataLen {
		return nil, fmt.Errorf("%w: metadata length %d", ErrLimitExceeded, h.MetadataLength)
	}

	var metadata map[string]any
	if h.MetadataLength > 0 {
		if (h.HeaderFlags & HeaderFlagMetadataJSON) == 0 {
			return nil, fmt.Errorf("%w: metadata present but METADATA_JSON flag not set", ErrInvalidHeader)
		}
		mb := make([]byte, h.MetadataLength)
		if _, err := io.ReadFull(r, mb); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(mb, &metadata); err != nil {
			return nil, err
		}
		if metadata == nil {
			return nil, fmt.Errorf("%w: metadata must be a JSON object", ErrInvalidHeader)
		}
	}

	var notes NoteBundle
	if err := readSection(r, SectionNotes, cfg.limits.MaxNotesSectionLen, cfg.limits.MaxNotesUncompressed, &notes); err != nil {
		return nil, err
	}
	var attachments AttachmentBundle
	if err := readSection(r, SectionAttachments, cfg.limits.MaxAttachmentsSectionLen, cfg.limits.MaxAttachmentsUncompressed, &attachments); err != nil {
		return nil, err
	}
	if attachments.BundleVersion == 0 && len(attachments.Items) == 0 {
		attachments.BundleVersion = VersionV1
	}

	if uint32(len(notes.Notes)) != h.NoteCount {
		return nil, fmt.Errorf("%w: header note count %d != %d decoded", ErrInvalidHeader, h.NoteCount, len(notes.Notes))
	}
	if uint32(len(attachments.Items)) != h.AttachmentCount {
		return nil, fmt.Errorf("%w: header attachment count %d != %d decoded", ErrInvalidHeader, h.AttachmentCount, len(attachments.Items))
	}

	bundle := &Bundle{Metadata: metadata, Notes: notes, Attachments: attachments}
	if err := validateBundle(bundle, cfg.limits, cfg.verifyHashes); err != nil {
		return nil, err
	}
	return bundle, nil
}

// readSection reads one section header and payload, then decompresses and
// gob-decodes it into out. A zero-length payload leaves out at its zero
// value.
func readSection(r io.Reader, expected SectionType, maxStored, maxUncompressed uint64, out any) error {
	sh, err := readSectionHeader(r)
	if err != nil {
		return err
	}
	if err := validateSectionHeader(sh, expected); err != nil {
		return err
	}
	if sh.PayloadLen > maxStored {
		return fmt.Errorf("%w: section %d payload too large", ErrLimitExceeded, expected)
	}
	if sh.PayloadLen == 0 {
		return nil
	}
	payload := make([]byte, sh.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	raw, err := decompressSection(sh.compression(), payload, sh.UncompressedLen, maxUncompressed)
	if err != nil {
		return err
	}
	if uint64(len(raw)) > maxUncompressed {
		return fmt.Errorf("%w: section %d uncompressed payload too large", ErrLimitExceeded, expected)
	}
	return gob.NewDecoder(bytes.NewReader(raw)).Decode(out)
}
