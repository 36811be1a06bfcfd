package export

import (
	"crypto/sha256"
	"time"
)

const (
	VersionV1 uint16 = 1

	fixedHeaderSizeV1 uint32 = 32
)

// Magic is the 8-byte NEXB (Note EXport Bundle) file signature.
var Magic = [8]byte{'N', 'E', 'X', 'B', '\r', '\n', 0x1A, 0x00}

const (
	HeaderFlagMetadataJSON uint16 = 0x0001
)

type SectionType uint16

const (
	SectionNotes       SectionType = 1
	SectionAttachments SectionType = 2
)

type Compression uint16

const (
	CompNone Compression = 0x0
	CompZIP  Compression = 0x1
	CompZSTD Compression = 0x2
	CompLZ4  Compression = 0x3
	CompBR   Compression = 0x4
)

const sectionFlagCompressionMask uint16 = 0x000F

// NoteBundle holds every exported note document.
type NoteBundle struct {
	BundleVersion uint16
	Notes         []NoteDocument
}

// NoteDocument is one rendered note. Markdown is the canonical rendering;
// attachment references inside it point at AttachmentPayload IDs.
type NoteDocument struct {
	ID         string
	Title      string
	Folder     string
	Modified   time.Time
	Markdown   []byte
	Attributes map[string]string
}

// AttachmentBundle holds the binary payloads referenced by the notes.
type AttachmentBundle struct {
	BundleVersion uint16
	Items         []AttachmentPayload
}

type AttachmentPayload struct {
	ID      string
	Path    string
	TypeUTI string
	Data    []byte
	SHA256  [32]byte
}

func (p AttachmentPayload) computedSHA256() [32]byte {
	return sha256.Sum256(p.Data)
}

// Bundle is a logical representation of a NEXB file.
//
// Metadata is optional and, if present, is encoded as a JSON object.
// Notes MUST contain at least one document.
// Attachments MAY be empty.
type Bundle struct {
	Metadata    map[string]any
	Notes       NoteBundle
	Attachments AttachmentBundle
}
