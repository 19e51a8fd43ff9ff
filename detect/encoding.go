package detect

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// DefaultEncoding is used when detection is not confident enough.
const DefaultEncoding = "utf-8"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Guess is a detected encoding label with a confidence in [0, 1].
type Guess struct {
	Label      string
	Confidence float64
}

// GuessEncoding scores buf without applying thresholds or normalization.
func GuessEncoding(buf []byte) Guess {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return Guess{"utf-8", 1}
	case bytes.HasPrefix(buf, bomUTF16BE):
		return Guess{"utf-16-be", 1}
	case bytes.HasPrefix(buf, bomUTF16LE):
		return Guess{"utf-16-le", 1}
	}
	buf = trimPartialRune(buf)
	multi := 0
	ascii := true
	for _, b := range buf {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return Guess{"ascii", 1}
	}
	if utf8.Valid(buf) {
		for len(buf) > 0 {
			_, size := utf8.DecodeRune(buf)
			if size > 1 {
				multi++
			}
			buf = buf[size:]
		}
		// Each multi-byte sequence halves the chance of a false positive.
		conf := 0.99
		if multi < 6 {
			unlikely := 0.99
			for i := 0; i < multi; i++ {
				unlikely *= 0.5
			}
			conf = 1 - unlikely
		}
		return Guess{"utf-8", conf}
	}
	_, name, certain := charset.DetermineEncoding(buf, "text/plain")
	if certain {
		return Guess{name, 1}
	}
	return Guess{name, 0.5}
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off at the end of
// the buffer.
func trimPartialRune(buf []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(buf); i++ {
		b := buf[len(buf)-i]
		if b < 0x80 {
			return buf
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}
			return buf
		}
	}
	return buf
}

// DetectEncoding returns the encoding label of buf. A given label is only
// normalized. Otherwise the user EncodingFunction wins, then detection
// falls back to utf-8 when the confidence is below the threshold or the
// guess is plain ascii. BOM-prefixed buffers get BOM-aware labels
// ("utf-8-sig", "utf-16").
func (d *Detector) DetectEncoding(buf []byte, given string) string {
	if len(buf) > d.opt.BufferSize {
		buf = buf[:d.opt.BufferSize]
	}
	label := given
	if label == "" {
		if d.opt.EncodingFunction != nil {
			return d.opt.EncodingFunction(buf)
		}
		g := GuessEncoding(buf)
		label = g.Label
		if g.Confidence < d.opt.EncodingConfidence || label == "ascii" {
			label = DefaultEncoding
		}
	}
	label = normalizeLabel(label)
	switch {
	case label == "utf-8" && bytes.HasPrefix(buf, bomUTF8):
		return "utf-8-sig"
	case label == "utf-16-be" && bytes.HasPrefix(buf, bomUTF16BE):
		return "utf-16"
	case label == "utf-16-le" && bytes.HasPrefix(buf, bomUTF16LE):
		return "utf-16"
	}
	return label
}

func normalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case "utf-8-sig", "utf-16", "ascii", "us-ascii":
		return l
	}
	_, name := charset.Lookup(l)
	switch name {
	case "":
		return l
	case "utf-16be":
		return "utf-16-be"
	case "utf-16le":
		return "utf-16-le"
	}
	return name
}
