package source

type (
	// FileFlags encodes metadata about a loaded file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (stdin, test).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File captures the content of a single input together with its metadata.
type File struct {
	Path    string
	Content []byte
	Hash    [32]byte // of the bytes as read, before normalisation
	Flags   FileFlags
}

// LoadOptions selects the optional normalisations applied on load.
// Both are off by default so that input bytes reach the formatter untouched.
type LoadOptions struct {
	NormalizeLineEndings bool // strip UTF-8 BOM and turn CRLF into LF
	NormalizeUnicode     bool // convert content to Unicode NFC
}
