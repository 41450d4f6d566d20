package runner

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Program is the text of the selected source file.
type Program struct {
	Path string
	Text string
}

// ReadProgram reads the whole file at path as UTF-8 text. A positive maxBytes
// rejects larger files. All failures are KindReadError.
func ReadProgram(path string, maxBytes int64) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindReadError, err, "%v", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindReadError, err, "%v", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, newError(KindReadError, nil, "%s exceeds maximum size of %d bytes", path, maxBytes)
	}

	if pos := invalidUTF8(data); pos >= 0 {
		return nil, newError(KindReadError, nil, "%s: cannot decode byte 0x%02x in position %d: invalid UTF-8", path, data[pos], pos)
	}

	return &Program{Path: path, Text: string(data)}, nil
}

// invalidUTF8 returns the offset of the first byte that does not start a valid
// UTF-8 sequence, or -1.
func invalidUTF8(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// Size is the program length in bytes.
func (p *Program) Size() int64 { return int64(len(p.Text)) }

func (p *Program) String() string {
	return fmt.Sprintf("%s (%d bytes)", p.Path, len(p.Text))
}
