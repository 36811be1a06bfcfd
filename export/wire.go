package export

import (
	"encoding/binary"
	"fmt"
	"io"
)

// fixedHeaderV1 is the 32-byte file header. NoteCount and AttachmentCount
// duplicate the section contents so inventory tools can read them without
// decompressing anything; Decode cross-checks them against the sections.
type fixedHeaderV1 struct {
	Magic           [8]byte
	Version         uint16
	HeaderFlags     uint16
	MetadataLength  uint32
	NoteCount       uint32
	AttachmentCount uint32
	CreatedUnix     int64
}

// sectionHeaderV1 precedes each section payload. UncompressedLen is the gob
// size after decompression; it must be zero exactly when the section is
// stored uncompressed.
type sectionHeaderV1 struct {
	SectionType     uint16
	SectionFlags    uint16
	PayloadLen      uint64
	UncompressedLen uint64
}

const sectionHeaderSizeV1 = 20

func readFixedHeader(r io.Reader) (fixedHeaderV1, error) {
	var buf [fixedHeaderSizeV1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fixedHeaderV1{}, err
	}
	var h fixedHeaderV1
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.HeaderFlags = binary.LittleEndian.Uint16(buf[10:12])
	h.MetadataLength = binary.LittleEndian.Uint32(buf[12:16])
	h.NoteCount = binary.LittleEndian.Uint32(buf[16:20])
	h.AttachmentCount = binary.LittleEndian.Uint32(buf[20:24])
	h.CreatedUnix = int64(binary.LittleEndian.Uint64(buf[24:32]))
	return h, nil
}

func writeFixedHeader(w io.Writer, h fixedHeaderV1) error {
	var buf [fixedHeaderSizeV1]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.HeaderFlags)
	binary.LittleEndian.PutUint32(buf[12:16], h.MetadataLength)
	binary.LittleEndian.PutUint32(buf[16:20], h.NoteCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.AttachmentCount)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.CreatedUnix))
	_, err := w.Write(buf[:])
	return err
}

func readSectionHeader(r io.Reader) (sectionHeaderV1, error) {
	var buf [sectionHeaderSizeV1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return sectionHeaderV1{}, err
	}
	var sh sectionHeaderV1
	sh.SectionType = binary.LittleEndian.Uint16(buf[0:2])
	sh.SectionFlags = binary.LittleEndian.Uint16(buf[2:4])
	sh.PayloadLen = binary.LittleEndian.Uint64(buf[4:12])
	sh.UncompressedLen = binary.LittleEndian.Uint64(buf[12:20])
	return sh, nil
}

func writeSectionHeader(w io.Writer, sh sectionHeaderV1) error {
	var buf [sectionHeaderSizeV1]byte
	binary.LittleEndian.PutUint16(buf[0:2], sh.SectionType)
	binary.LittleEndian.PutUint16(buf[2:4], sh.SectionFlags)
	binary.LittleEndian.PutUint64(buf[4:12], sh.PayloadLen)
	binary.LittleEndian.PutUint64(buf[12:20], sh.UncompressedLen)
	_, err := w.Write(buf[:])
	return err
}

func (sh sectionHeaderV1) compression() Compression {
	return Compression(sh.SectionFlags & sectionFlagCompressionMask)
}

func validateSectionHeader(sh sectionHeaderV1, expected SectionType) error {
	if sh.SectionFlags&^sectionFlagCompressionMask != 0 {
		return fmt.Errorf("%w: unknown section flags %#x", ErrInvalidSection, sh.SectionFlags)
	}
	if SectionType(sh.SectionType) != expected {
		return fmt.Errorf("%w: expected section type %d got %d", ErrInvalidSection, expected, sh.SectionType)
	}
	comp := sh.compression()
	switch comp {
	case CompNone, CompZIP, CompZSTD, CompLZ4, CompBR:
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidSection, comp)
	}
	if comp == CompNone && sh.UncompressedLen != 0 {
		return fmt.Errorf("%w: uncompressed section must not carry an uncompressed length", ErrInvalidSection)
	}
	if comp != CompNone && sh.UncompressedLen == 0 {
		return fmt.Errorf("%w: compressed section must carry an uncompressed length", ErrInvalidSection)
	}
	return nil
}
