// Package source holds the pieces shared by byte-oriented row sources:
// byte and hash counting, and text decoding for detected encodings.
// Format readers live in the subpackages.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/reoring/tabskema"
)

// Counter counts and hashes the bytes read through it. It implements
// resource.ByteCounter.
type Counter struct {
	r io.Reader
	n int64
	h hash.Hash
}

// NewCounter wraps r.
func NewCounter(r io.Reader) *Counter {
	return &Counter{r: r, h: sha256.New()}
}

func (c *Counter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	c.h.Write(p[:n])
	return n, err
}

// Bytes returns the number of bytes read so far.
func (c *Counter) Bytes() int64 { return c.n }

// Hash returns the hex sha256 of the bytes read so far.
func (c *Counter) Hash() string { return hex.EncodeToString(c.h.Sum(nil)) }

// Encoding resolves a detected label into a decoder. "utf-8" and "ascii"
// return nil: the text is used as is and validated by the reader.
func Encoding(label string) (encoding.Encoding, error) {
	switch label {
	case "", "utf-8", "ascii", "us-ascii":
		return nil, nil
	case "utf-8-sig":
		return unicode.UTF8BOM, nil
	case "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), nil
	case "utf-16-be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf-16-le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, tabskema.NewErrorf(tabskema.ErrEncoding, "encoding %q is not supported", label)
	}
	return enc, nil
}

// Decode wraps r with the decoder for label.
func Decode(r io.Reader, label string) (io.Reader, error) {
	enc, err := Encoding(label)
	if err != nil || enc == nil {
		return r, err
	}
	return enc.NewDecoder().Reader(r), nil
}

// CheckText returns an encoding-error when a decoded cell is not valid
// UTF-8, which happens when text declared as utf-8 is not.
func CheckText(label string, cells []string) error {
	for _, c := range cells {
		if !utf8.ValidString(c) {
			return tabskema.NewError(tabskema.ErrEncoding, fmt.Sprintf("%q cannot decode %q", label, c))
		}
	}
	return nil
}
