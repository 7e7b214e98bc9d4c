// Package obj defines the assembled object image type, as well as an
// encoder and decoder for its file format.
//
// The format is a sequence of big-endian 16-bit words. Each segment
// starts with its origin word, followed by one word per program
// location. Multiple segments are concatenated.
package obj

import (
	"encoding/hex"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Segment is one contiguous block of code or data with its load address.
type Segment struct {
	Origin uint16   // Address at which the first word is loaded.
	Code   []uint16 // Assembled words.
}

// Image defines a complete, assembled object image.
type Image struct {
	Segments []Segment
}

// New creates a new, empty image.
func New() *Image {
	return &Image{}
}

// Size returns the total number of words in all segments, excluding
// the origin words.
func (m *Image) Size() int {
	var n int
	for _, s := range m.Segments {
		n += len(s.Code)
	}
	return n
}

// Load reads image data from the given stream.
func (m *Image) Load(r io.Reader) (err error) {
	defer recoverOnPanic(&err)

	data := readAll(r)
	if len(data)%2 != 0 {
		return errors.New("obj: truncated word; image must hold an even number of bytes")
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = uint16(data[i*2])<<8 | uint16(data[i*2+1])
	}

	if len(words) < 2 {
		return errors.New("obj: image must hold an origin word and at least one code word")
	}

	// The stream carries no segment lengths, so a loaded file is one
	// origin-prefixed block. Multi-segment images are a producer-side
	// concept; hosts load them one file at a time.
	origin := words[0]
	code := words[1:]
	if len(code) > 0x10000-int(origin) {
		return errors.Errorf("obj: segment at %04x extends past the end of memory", origin)
	}

	m.Segments = append(m.Segments, Segment{Origin: origin, Code: code})
	return
}

// Save writes image data to the given stream.
func (m *Image) Save(w io.Writer) (err error) {
	defer recoverOnPanic(&err)

	for _, s := range m.Segments {
		writeU16(w, s.Origin)
		for _, word := range s.Code {
			writeU16(w, word)
		}
	}
	return
}

func recoverOnPanic(err *error) {
	x := recover()
	if x == nil {
		return
	}

	switch tx := x.(type) {
	case runtime.Error:
		panic(tx)
	case error:
		*err = errors.Wrapf(tx, "obj")
	default:
		*err = fmt.Errorf("obj: %v", tx)
	}
}

// String returns a human-readable dump of the image's contents.
func (m *Image) String() string {
	var sb strings.Builder

	for _, s := range m.Segments {
		fmt.Fprintf(&sb, "Segment at %04x (%d words):\n", s.Origin, len(s.Code))

		raw := make([]byte, len(s.Code)*2)
		for i, word := range s.Code {
			raw[i*2] = byte(word >> 8)
			raw[i*2+1] = byte(word)
		}
		fmt.Fprintf(&sb, "%s\n", hex.Dump(raw))
	}

	return sb.String()
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func readAll(r io.Reader) []byte {
	data, err := io.ReadAll(r)
	check(err)
	return data
}

func writeU16(w io.Writer, v uint16) {
	_, err := w.Write([]byte{byte(v >> 8), byte(v)})
	check(err)
}
