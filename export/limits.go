package export

type Limits struct {
	MaxMetadataLen             uint32
	MaxNotesSectionLen         uint64 // compressed payload length as stored in file
	MaxAttachmentsSectionLen   uint64 // compressed payload length as stored in file
	MaxNotesUncompressed       uint64 // gob bytes after decompression
	MaxAttachmentsUncompressed uint64
	MaxNotes                   int
	MaxAttachments             int
	MaxSingleNoteSize          uint64
	MaxSingleAttachmentSize    uint64
}

func defaultLimits() Limits {
	return Limits{
		MaxMetadataLen:             1 << 20,   // 1 MiB
		MaxNotesSectionLen:         1 << 30,   // 1 GiB stored payload cap
		MaxAttachmentsSectionLen:   1 << 32,   // 4 GiB stored payload cap
		MaxNotesUncompressed:       256 << 20, // 256 MiB
		MaxAttachmentsUncompressed: 2 << 30,   // 2 GiB
		MaxNotes:                   100_000,
		MaxAttachments:             100_000,
		MaxSingleNoteSize:          64 << 20,
		MaxSingleAttachmentSize:    512 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxMetadataLen == 0 {
		l.MaxMetadataLen = d.MaxMetadataLen
	}
	if l.MaxNotesSectionLen == 0 {
		l.MaxNotesSectionLen = d.MaxNotesSectionLen
	}
	if l.MaxAttachmentsSectionLen == 0 {
		l.MaxAttachmentsSectionLen = d.MaxAttachmentsSectionLen
	}
	if l.MaxNotesUncompressed == 0 {
		l.MaxNotesUncompressed = d.MaxNotesUncompressed
	}
	if l.MaxAttachmentsUncompressed == 0 {
		l.MaxAttachmentsUncompressed = d.MaxAttachmentsUncompressed
	}
	if l.MaxNotes == 0 {
		l.MaxNotes = d.MaxNotes
	}
	if l.MaxAttachments == 0 {
		l.MaxAttachments = d.MaxAttachments
	}
	if l.MaxSingleNoteSize == 0 {
		l.MaxSingleNoteSize = d.MaxSingleNoteSize
	}
	if l.MaxSingleAttachmentSize == 0 {
		l.MaxSingleAttachmentSize = d.MaxSingleAttachmentSize
	}
	return l
}
