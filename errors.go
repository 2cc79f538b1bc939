package himg

import (
	"github.com/pkg/errors"
)

// Sentinel error kinds. Callers can test against these with errors.Is;
// internal code wraps them with github.com/pkg/errors for stack context
// before they cross the package boundary.
var (
	// ErrMalformedContainer covers bad magic, truncated chunks, payload
	// size mismatches, missing required chunks, and unsupported versions.
	ErrMalformedContainer = errors.New("himg: malformed container")

	// ErrInvalidConfig covers mapping-function or quantize-config chunks
	// whose size disagrees with their encoded length field, predictor
	// bytes out of range, or shifts above 15.
	ErrInvalidConfig = errors.New("himg: invalid configuration chunk")

	// ErrHuffman covers reads past the end of a bit stream, writes past
	// the end of an output buffer, undefined RLE branches, and
	// block-frame sizes that overrun their parent chunk.
	ErrHuffman = errors.New("himg: huffman stream error")

	// ErrInvalidParam covers bad caller arguments to Encode.
	ErrInvalidParam = errors.New("himg: invalid parameter")
)

// errDecode wraps a sentinel error so it can be thrown with panic and
// recovered at the top of Decode without unwinding every call frame in
// between by hand. The decode path is deeply recursive (Huffman tree
// descent, block-row loops); propagating an error value through all of
// it would bury the actual failure in plumbing.
type errDecode struct {
	error
}

func (d *decoder) panic(err error) {
	panic(errDecode{errors.WithStack(err)})
}

// errWrap attaches a stack trace to a sentinel error at the point it is
// returned across a package boundary.
func errWrap(err error) error {
	return errors.WithStack(err)
}
