package source

// streaming.go holds the io.Reader wrappers applied to CSV input before parsing:
//
//   - BOMSkippingReader drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel on Windows
//   - UTF8Sanitizer replaces invalid UTF-8 bytes with '?' without buffering the file
//
// WrapForStreaming applies both in the right order.

import (
	"io"
	"unicode/utf8"
)

// UTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with '?'.
// Multi-byte sequences split across reads are carried over to the next call.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizing reader.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}

	written := s.sanitize(p[:n], err == io.EOF)
	if written == 0 && err == nil {
		// Only an incomplete sequence was read; ask for more instead of returning 0, nil.
		return s.Read(p)
	}
	return written, err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to hand out.
// Unless atEOF, a trailing incomplete sequence is moved to pending.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if tail := incompleteTail(data); tail > 0 {
				s.pending = append(s.pending, data[len(data)-tail:]...)
				return len(data) - tail
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		if !atEOF && utf8.RuneStart(data[read]) && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// incompleteTail returns how many trailing bytes of data start a multi-byte
// sequence that is not finished yet.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		start := len(data) - i
		if utf8.RuneStart(data[start]) {
			if utf8.FullRune(data[start:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// BOMSkippingReader wraps an io.Reader and drops a leading UTF-8 BOM.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	buf     []byte
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.reader, head[:])
		switch {
		case err == io.ErrUnexpectedEOF || err == io.EOF:
			err = nil
		case err != nil:
			return 0, err
		}

		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			b.buf = append(b.buf, head[:n]...)
		}
	}

	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}

	return b.reader.Read(p)
}

// WrapForStreaming strips the BOM first, then sanitizes UTF-8.
func WrapForStreaming(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}
