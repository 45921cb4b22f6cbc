package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Load reads a file from disk and applies the requested normalisations.
// Any read failure is returned as is; no partial content is ever produced.
func Load(path string, opts LoadOptions) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newFile(path, content, 0, opts), nil
}

// NewVirtual wraps in-memory content (stdin, tests) as a File.
func NewVirtual(name string, content []byte, opts LoadOptions) *File {
	return newFile(name, content, FileVirtual, opts)
}

func newFile(path string, content []byte, flags FileFlags, opts LoadOptions) *File {
	hash := sha256.Sum256(content)
	if opts.NormalizeLineEndings {
		var hadBOM, hadCRLF bool
		content, hadBOM = removeBOM(content)
		content, hadCRLF = normalizeCRLF(content)
		if hadBOM {
			flags |= FileHadBOM
		}
		if hadCRLF {
			flags |= FileNormalizedCRLF
		}
	}
	if opts.NormalizeUnicode && !norm.NFC.IsNormal(content) {
		content = norm.NFC.Bytes(content)
		flags |= FileNormalizedNFC
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		Hash:    hash,
		Flags:   flags,
	}
}

// Document splits the file content into lines.
func (f *File) Document() Document {
	return Parse(f.Content)
}

// LineCount returns the number of lines Document would produce.
func (f *File) LineCount() uint32 {
	n := bytes.Count(f.Content, []byte{'\n'})
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	count, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return count
}

// Changed reports whether writing formatted would alter the bytes as read.
// Normalisation done on load counts as a change.
func (f *File) Changed(formatted []byte) bool {
	return sha256.Sum256(formatted) != f.Hash
}
