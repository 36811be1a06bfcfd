package export

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Encode writes bundle to w as a NEXB v1 file.
//
// The bundle is validated first: bundle versions must be VersionV1, at
// least one note must exist, IDs must be unique, attachment paths must be
// relative and normalized, and non-zero SHA256 hashes must match the data.
//
// By default Encode uses Zstandard compression for both sections,
// auto-populates zero attachment hashes (modifying bundle in place), and
// stamps the header with the current time. See the WriteOption functions.
func Encode(w io.Writer, bundle *Bundle, opts ...WriteOption) error {
	cfg := writeConfig{
		limits:          defaultLimits(),
		verifyHashes:    true,
		autoPopulate:    true,
		notesComp:       CompZSTD,
		attachmentsComp: CompZSTD,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if bundle == nil {
		return fmt.Errorf("%w: bundle is nil", ErrValidation)
	}
	if cfg.created.IsZero() {
		cfg.created = time.Now()
	}

	if cfg.autoPopulate {
		for i := range bundle.Attachments.Items {
			if bundle.Attachments.Items[i].SHA256 == ([32]byte{}) {
				bundle.Attachments.Items[i].SHA256 = bundle.Attachments.Items[i].computedSHA256()
			}
		}
	}

	if err := validateBundle(bundle, cfg.limits, cfg.verifyHashes); err != nil {
		return err
	}

	var metadataBytes []byte
	var headerFlags uint16
	if bundle.Metadata != nil {
		b, err := json.Marshal(bundle.Metadata)
		if err != nil {
			return err
		}
		if len(b) > int(cfg.limits.MaxMetadataLen) {
			return fmt.Errorf("%w: metadata too large", ErrLimitExceeded)
		}
		metadataBytes = b
		headerFlags |= HeaderFlagMetadataJSON
	}

	notesGob, err := gobEncode(bundle.Notes)
	if err != nil {
		return err
	}
	attGob, err := gobEncode(bundle.Attachments)
	if err != nil {
		return err
	}

	notesPayload, notesLen, err := compressSection(cfg.notesComp, notesGob)
	if err != nil {
		return err
	}
	attPayload, attLen, err := compressSection(cfg.attachmentsComp, attGob)
	if err != nil {
		return err
	}

	h := fixedHeaderV1{
		Magic:           Magic,
		Version:         VersionV1,
		HeaderFlags:     headerFlags,
		MetadataLength:  uint32(len(metadataBytes)),
		NoteCount:       uint32(len(bundle.Notes.Notes)),
		AttachmentCount: uint32(len(bundle.Attachments.Items)),
		CreatedUnix:     cfg.created.Unix(),
	}
	if err := writeFixedHeader(w, h); err != nil {
		return err
	}
	if len(metadataBytes) > 0 {
		if _, err := w.Write(metadataBytes); err != nil {
			return err
		}
	}

	notesHeader := sectionHeaderV1{
		SectionType:     uint16(SectionNotes),
		SectionFlags:    uint16(cfg.notesComp),
		PayloadLen:      uint64(len(notesPayload)),
		UncompressedLen: notesLen,
	}
	if err := writeSectionHeader(w, notesHeader); err != nil {
		return err
	}
	if _, err := w.Write(notesPayload); err != nil {
		return err
	}

	attHeader := sectionHeaderV1{
		SectionType:     uint16(SectionAttachments),
		SectionFlags:    uint16(cfg.attachmentsComp),
		PayloadLen:      uint64(len(attPayload)),
		UncompressedLen: attLen,
	}
	if err := writeSectionHeader(w, attHeader); err != nil {
		return err
	}
	_, err = w.Write(attPayload)
	return err
}

// gobEncode serializes v using Go's gob encoding.
func gobEncode[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
