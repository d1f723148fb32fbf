package metadata

import (
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/search"
	"golang.org/x/text/encoding/unicode"
)

// Tags bracketing the embedded metadata document. They are fixed by the file
// format and stored in the file as wide (two bytes per character) text.
const (
	SchemaStartTag = "<ExperimentSchema"
	SchemaEndTag   = "</ExperimentSchema>"
)

// Region is the half-open byte range [Start, End) of the embedded document,
// closing tag included. Start also bounds the binary record region.
type Region struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the region.
func (r Region) Len() int64 {
	return r.End - r.Start
}

// EncodeWide encodes s as wide text: each character becomes its low byte
// followed by a zero byte.
func EncodeWide(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i], 0x00)
	}

	return out
}

// Locate brackets the embedded metadata document of an IMD file.
//
// The closing tag is searched backward from the end of the file; the opening
// tag is then searched backward from the start of the closing tag. A missing
// tag is reported as errs.ErrMalformedInput.
//
// Parameters:
//   - r: the file contents
//   - size: total file length in bytes
//   - opts: search options, e.g. search.WithWindowSize
//
// Returns:
//   - Region: the document byte range, closing tag included
//   - error: errs.ErrIO on read failure, errs.ErrMalformedInput on a missing tag
func Locate(r io.ReaderAt, size int64, opts ...search.Option) (Region, error) {
	endPattern := EncodeWide(SchemaEndTag)
	endPos, err := search.LastIndex(r, size, endPattern, 0, opts...)
	if err != nil {
		return Region{}, fmt.Errorf("searching end tag %s: %w", SchemaEndTag, err)
	}
	if endPos == search.NotFound {
		return Region{}, fmt.Errorf("%w: could not find XML end tag %s", errs.ErrMalformedInput, SchemaEndTag)
	}

	// A zero bound would mean "whole file" to the search, so an end tag at
	// offset 0 is rejected here.
	startPos := search.NotFound
	if endPos > 0 {
		startPos, err = search.LastIndex(r, size, EncodeWide(SchemaStartTag), endPos, opts...)
		if err != nil {
			return Region{}, fmt.Errorf("searching start tag %s: %w", SchemaStartTag, err)
		}
	}
	if startPos == search.NotFound {
		return Region{}, fmt.Errorf("%w: could not find XML start tag %s before offset %d",
			errs.ErrMalformedInput, SchemaStartTag, endPos)
	}

	return Region{Start: startPos, End: endPos + int64(len(endPattern))}, nil
}

// ReadText reads region from r and decodes it from wide text.
func ReadText(r io.ReaderAt, region Region) (string, error) {
	if region.Start < 0 || region.End < region.Start {
		return "", fmt.Errorf("%w: invalid metadata region [%d, %d)", errs.ErrMalformedInput, region.Start, region.End)
	}

	raw := make([]byte, region.Len())
	n, err := r.ReadAt(raw, region.Start)
	if n < len(raw) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return "", fmt.Errorf("%w: reading metadata at offset %d: %w", errs.ErrIO, region.Start, err)
	}

	return DecodeWide(raw)
}

// DecodeWide decodes little-endian wide text. For the ASCII documents written
// by the instrument this is equivalent to taking every other byte.
func DecodeWide(raw []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	text, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decoding wide text: %w", errs.ErrMalformedInput, err)
	}

	return string(text), nil
}

var markupUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">")

// Unescape turns the literal "&lt;" and "&gt;" sequences used for embedded
// markup back into "<" and ">".
//
// The replacement runs over the whole document, not just the embedded markup.
// Character data that legitimately carries an escaped "&lt;", such as
// "<Note>x &lt; y</Note>", becomes a bare "<" and the later Parse rejects it
// with errs.ErrMalformedInput.
func Unescape(text string) string {
	return markupUnescaper.Replace(text)
}
