package export

import "time"

type readConfig struct {
	limits       Limits
	verifyHashes bool
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithVerifyHashes controls whether non-zero AttachmentPayload.SHA256
// fields are checked against the data during Decode.
func WithVerifyHashes(v bool) ReadOption {
	return func(c *readConfig) { c.verifyHashes = v }
}

type writeConfig struct {
	limits          Limits
	verifyHashes    bool
	autoPopulate    bool
	notesComp       Compression
	attachmentsComp Compression
	created         time.Time
}

type WriteOption func(*writeConfig)

func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithVerifyHashesOnWrite controls hash verification during Encode.
func WithVerifyHashesOnWrite(v bool) WriteOption {
	return func(c *writeConfig) { c.verifyHashes = v }
}

// WithAutoPopulateSHA256 causes Encode to compute SHA256 for attachment
// payloads with a zero hash (modifies the bundle in place).
func WithAutoPopulateSHA256(v bool) WriteOption {
	return func(c *writeConfig) { c.autoPopulate = v }
}

func WithNotesCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.notesComp = comp }
}

func WithAttachmentsCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.attachmentsComp = comp }
}

// WithCreatedTime overrides the creation timestamp recorded in the file
// header. The default is the wall clock at Encode time.
func WithCreatedTime(t time.Time) WriteOption {
	return func(c *writeConfig) { c.created = t }
}
