package himg

import (
	"bytes"
	"math/rand"
	"testing"
)

func compressDecompress(t *testing.T, in []byte, blockSize int) []byte {
	t.Helper()
	out := make([]byte, huffmanMaxCompressedSize(len(in))+64)
	n := huffmanCompress(out, in, blockSize)
	if n == 0 && len(in) > 0 {
		t.Fatalf("huffmanCompress returned 0 for %d bytes in", len(in))
	}
	compressed := out[:n]

	dec := newHuffmanDec(compressed, blockSize < len(in))
	if err := dec.init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	result := make([]byte, len(in))
	if blockSize >= len(in) {
		if err := dec.uncompress(result); err != nil {
			t.Fatalf("uncompress: %v", err)
		}
	} else {
		numBlocks := len(in) / blockSize
		if dec.numBlocks() != numBlocks {
			t.Fatalf("numBlocks = %d, want %d", dec.numBlocks(), numBlocks)
		}
		for b := 0; b < numBlocks; b++ {
			if err := dec.uncompressBlock(result[b*blockSize:(b+1)*blockSize], b); err != nil {
				t.Fatalf("uncompressBlock(%d): %v", b, err)
			}
		}
	}
	return result
}

// TestHuffmanRoundTripMonolithic exercises the single-stream layout used
// for the low-res chunks.
func TestHuffmanRoundTripMonolithic(t *testing.T) {
	in := make([]byte, 4096)
	rng := rand.New(rand.NewSource(1))
	for i := range in {
		if rng.Intn(4) == 0 {
			in[i] = 0
		} else {
			in[i] = byte(rng.Intn(40))
		}
	}
	got := compressDecompress(t, in, len(in))
	if !bytes.Equal(got, in) {
		t.Errorf("round trip mismatch")
	}
}

// TestHuffmanRoundTripBlockFramed exercises the per-block-row layout used
// for the full-res chunk.
func TestHuffmanRoundTripBlockFramed(t *testing.T) {
	const blockSize = 256
	in := make([]byte, blockSize*9)
	rng := rand.New(rand.NewSource(2))
	for i := range in {
		if rng.Intn(3) == 0 {
			in[i] = 0
		} else {
			in[i] = byte(rng.Intn(256))
		}
	}
	got := compressDecompress(t, in, blockSize)
	if !bytes.Equal(got, in) {
		t.Errorf("round trip mismatch")
	}
}

// TestHuffmanLongZeroRuns forces every RLE token length class to appear.
func TestHuffmanLongZeroRuns(t *testing.T) {
	var in []byte
	// Each run is closed by a non-zero byte so that the runs stay separate.
	in = append(in, 1)
	in = append(in, make([]byte, 1)...)         // -> literal zero, run length 1
	in = append(in, 1)
	in = append(in, make([]byte, 2)...)         // symTwoZeros
	in = append(in, 1)
	in = append(in, make([]byte, 5)...)         // symUpTo6Zeros
	in = append(in, 1)
	in = append(in, make([]byte, 20)...)        // symUpTo22Zeros
	in = append(in, 1)
	in = append(in, make([]byte, 200)...)       // symUpTo278Zeros
	in = append(in, 1)
	in = append(in, make([]byte, 5000)...)      // symUpTo16662Zeros
	in = append(in, 9)

	got := compressDecompress(t, in, len(in))
	if !bytes.Equal(got, in) {
		t.Errorf("round trip mismatch on RLE-heavy input")
	}
}

// TestHuffmanSingleSymbolAlphabet exercises the degenerate one-leaf tree
// case (Compress's else branch when only one symbol has a nonzero count).
func TestHuffmanSingleSymbolAlphabet(t *testing.T) {
	in := bytes.Repeat([]byte{42}, 100)
	got := compressDecompress(t, in, len(in))
	if !bytes.Equal(got, in) {
		t.Errorf("round trip mismatch on single-symbol input")
	}
}

// TestHuffmanEmptyInput checks that compressing zero bytes is a no-op.
func TestHuffmanEmptyInput(t *testing.T) {
	out := make([]byte, 16)
	if n := huffmanCompress(out, nil, 16); n != 0 {
		t.Errorf("huffmanCompress(nil) = %d, want 0", n)
	}
}

// TestHuffmanAllByteValues exercises every literal symbol at least once,
// with no zero runs at all.
func TestHuffmanAllByteValues(t *testing.T) {
	in := make([]byte, 256*3)
	for i := range in {
		in[i] = byte((i + 1) % 256) // never zero, so no RLE tokens fire
	}
	got := compressDecompress(t, in, len(in))
	if !bytes.Equal(got, in) {
		t.Errorf("round trip mismatch")
	}
}
