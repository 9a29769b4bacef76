package source

type (
	// FragmentFlags encodes metadata about how a fragment was obtained.
	FragmentFlags uint8 // метаданные
)

const (
	// FragmentVirtual indicates the fragment was added from memory (test, stdin, etc.).
	FragmentVirtual FragmentFlags = 1 << iota // добавлен не с диска
	FragmentHadBOM
	FragmentNormalizedCRLF
)

// Fragment is one independently authored unit of schema text.
// Identity is the ID (normally the source path), never the content.
type Fragment struct {
	ID      string
	Text    string
	LineIdx []uint32
	Hash    [32]byte
	Flags   FragmentFlags
}

// LineCol represents a human-readable position in a fragment.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Virtual reports whether the fragment was not read from disk.
func (f *Fragment) Virtual() bool {
	return f.Flags&FragmentVirtual != 0
}
