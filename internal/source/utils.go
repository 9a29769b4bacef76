package source

import (
	"bytes"
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte{'\r', '\n'}) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte{'\r', '\n'}, []byte{'\n'}), true
}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		return content[3:], true
	}
	return content, false
}

// buildLineIndex returns the byte offsets of every '\n' in text.
func buildLineIndex(text string) []uint32 {
	out := make([]uint32, 0, len(text)/32+1)
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		out = append(out, off)
	}
	return out
}

// lineBounds returns the [start, end) byte range of a 1-based line.
func lineBounds(lineIdx []uint32, textLen int, line uint32) (start, end int, ok bool) {
	if line == 0 {
		return 0, 0, false
	}
	n, err := safecast.Conv[uint32](len(lineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	switch {
	case line == 1:
		start = 0
	case line-2 < n:
		start = int(lineIdx[line-2]) + 1
	default:
		return 0, 0, false
	}
	if line-1 < n {
		end = int(lineIdx[line-1])
	} else {
		end = textLen
	}
	if start > textLen {
		return 0, 0, false
	}
	return start, min(end, textLen), true
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
