package export

import (
	"crypto/subtle"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

func validateBundle(b *Bundle, limits Limits, verifyHashes bool) error {
	if b == nil {
		return fmt.Errorf("%w: bundle is nil", ErrValidation)
	}
	if b.Notes.BundleVersion != VersionV1 {
		return fmt.Errorf("%w: Notes.BundleVersion must be %d", ErrValidation, VersionV1)
	}
	if len(b.Notes.Notes) == 0 {
		return fmt.Errorf("%w: Notes.Notes must not be empty", ErrValidation)
	}
	if len(b.Notes.Notes) > limits.MaxNotes {
		return fmt.Errorf("%w: too many notes", ErrLimitExceeded)
	}
	seenIDs := make(map[string]struct{}, len(b.Notes.Notes))
	for i := range b.Notes.Notes {
		n := b.Notes.Notes[i]
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("%w: note %d has empty ID", ErrValidation, i)
		}
		if _, ok := seenIDs[n.ID]; ok {
			return fmt.Errorf("%w: duplicate note ID %q", ErrValidation, n.ID)
		}
		seenIDs[n.ID] = struct{}{}
		if !utf8.Valid(n.Markdown) {
			return fmt.Errorf("%w: note %q markdown is not valid UTF-8", ErrValidation, n.ID)
		}
		if uint64(len(n.Markdown)) > limits.MaxSingleNoteSize {
			return fmt.Errorf("%w: note %q too large", ErrLimitExceeded, n.ID)
		}
	}
	if b.Attachments.BundleVersion != VersionV1 {
		return fmt.Errorf("%w: Attachments.BundleVersion must be %d", ErrValidation, VersionV1)
	}
	if len(b.Attachments.Items) > limits.MaxAttachments {
		return fmt.Errorf("%w: too many attachments", ErrLimitExceeded)
	}
	seenAtt := make(map[string]struct{}, len(b.Attachments.Items))
	for i := range b.Attachments.Items {
		it := b.Attachments.Items[i]
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("%w: attachment %d has empty ID", ErrValidation, i)
		}
		if _, ok := seenAtt[it.ID]; ok {
			return fmt.Errorf("%w: duplicate attachment ID %q", ErrValidation, it.ID)
		}
		seenAtt[it.ID] = struct{}{}
		if it.Path != "" {
			if err := validateBundlePath(it.Path); err != nil {
				return fmt.Errorf("%w: attachment %q path: %v", ErrValidation, it.ID, err)
			}
		}
		if uint64(len(it.Data)) > limits.MaxSingleAttachmentSize {
			return fmt.Errorf("%w: attachment %q too large", ErrLimitExceeded, it.ID)
		}
		if verifyHashes {
			if it.SHA256 != ([32]byte{}) {
				computed := it.computedSHA256()
				if subtle.ConstantTimeCompare(computed[:], it.SHA256[:]) != 1 {
					return fmt.Errorf("%w: attachment %q SHA256 mismatch", ErrValidation, it.ID)
				}
			}
		}
	}
	return nil
}

func validateBundlePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path must not be absolute")
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("path must use forward slashes")
	}
	clean := path.Clean(p)
	if clean != p {
		return fmt.Errorf("path must be normalized: %q", clean)
	}
	if clean == "." {
		return fmt.Errorf("path must not be current directory")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path must not escape")
	}
	return nil
}
