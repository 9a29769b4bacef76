package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
)

// FragmentSet is an ordered collection of fragments.
// Insertion order is significant: merge engines may resolve order-dependent
// conflicts against the later fragment, so the set never reorders.
type FragmentSet struct {
	fragments []Fragment
	index     map[string]int // id -> position
	baseDir   string         // базовая директория для относительных путей
}

// NewFragmentSet creates an empty set.
func NewFragmentSet() *FragmentSet {
	return &FragmentSet{
		fragments: make([]Fragment, 0),
		index:     make(map[string]int),
	}
}

// NewFragmentSetWithBase создаёт набор с заданной базовой директорией.
func NewFragmentSetWithBase(baseDir string) *FragmentSet {
	set := NewFragmentSet()
	set.baseDir = baseDir
	return set
}

// FromFragments builds a set from already constructed fragments, keeping order.
func FromFragments(frags []Fragment) (*FragmentSet, error) {
	set := NewFragmentSet()
	for _, f := range frags {
		if _, err := set.add(f.ID, []byte(f.Text), f.Flags); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// SetBaseDir sets the directory relative paths are rendered against.
func (s *FragmentSet) SetBaseDir(dir string) {
	s.baseDir = dir
}

// BaseDir returns the base directory, defaulting to the working directory.
func (s *FragmentSet) BaseDir() string {
	if s.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return s.baseDir
}

// Add stores a fragment from normalized bytes and computes its line index and hash.
// Adding an id twice is an error: identity is by id.
func (s *FragmentSet) Add(id string, content []byte, flags FragmentFlags) (*Fragment, error) {
	return s.add(id, content, flags)
}

func (s *FragmentSet) add(id string, content []byte, flags FragmentFlags) (*Fragment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("fragment id must not be empty")
	}
	key := id
	if flags&FragmentVirtual == 0 {
		key = normalizePath(id)
	}
	if _, dup := s.index[key]; dup {
		return nil, fmt.Errorf("duplicate fragment %q", key)
	}
	text := string(content)
	s.fragments = append(s.fragments, Fragment{
		ID:      key,
		Text:    text,
		LineIdx: buildLineIndex(text),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	s.index[key] = len(s.fragments) - 1
	return &s.fragments[len(s.fragments)-1], nil
}

// AddVirtual adds an in-memory fragment (stdin, test, or generated).
func (s *FragmentSet) AddVirtual(id, text string) (*Fragment, error) {
	return s.add(id, []byte(text), FragmentVirtual)
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (s *FragmentSet) Load(path string) (*Fragment, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	content, flags := normalizeContent(content)
	return s.add(path, content, flags)
}

func normalizeContent(content []byte) ([]byte, FragmentFlags) {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FragmentFlags(0)
	if hadBOM {
		flags |= FragmentHadBOM
	}
	if hadCRLF {
		flags |= FragmentNormalizedCRLF
	}
	return content, flags
}

// Len returns the number of fragments.
func (s *FragmentSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fragments)
}

// Fragments returns a copy of the fragments in insertion order.
func (s *FragmentSet) Fragments() []Fragment {
	if s == nil {
		return nil
	}
	out := make([]Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// IDs returns fragment ids in insertion order.
func (s *FragmentSet) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.fragments))
	for i := range s.fragments {
		ids[i] = s.fragments[i].ID
	}
	return ids
}

// Get returns the fragment with the given id.
func (s *FragmentSet) Get(id string) (*Fragment, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		if i, ok = s.index[normalizePath(id)]; !ok {
			return nil, false
		}
	}
	return &s.fragments[i], true
}

// Without returns the fragments except the one with omittedID, order preserved.
func (s *FragmentSet) Without(omittedID string) []Fragment {
	return Without(s.Fragments(), omittedID)
}

// Without returns frags minus the fragment whose id is omittedID.
func Without(frags []Fragment, omittedID string) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.ID == omittedID {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Line returns the 1-based line of a fragment, or "" when out of range.
func (f *Fragment) Line(line uint32) string {
	start, end, ok := lineBounds(f.LineIdx, len(f.Text), line)
	if !ok {
		return ""
	}
	return f.Text[start:end]
}

// LineCount returns the number of lines in the fragment.
func (f *Fragment) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if f.Text == "" || strings.HasSuffix(f.Text, "\n") {
		return n
	}
	return n + 1
}

// FormatPath renders the id of the fragment with the set's base directory.
func (s *FragmentSet) FormatPath(id string, mode PathMode) string {
	f, ok := s.Get(id)
	if !ok {
		return id
	}
	return FormatPath(f, mode, s.BaseDir())
}

// Resolve returns the source line for a 1-based position in fragment id.
// ok is false when the fragment is unknown or the line is out of range.
func (s *FragmentSet) Resolve(id string, line, col uint32) (text string, pos LineCol, ok bool) {
	f, found := s.Get(id)
	if !found || line == 0 || line > f.LineCount() {
		return "", LineCol{}, false
	}
	text = f.Line(line)
	if col == 0 {
		col = 1
	}
	return text, LineCol{Line: line, Col: col}, true
}
