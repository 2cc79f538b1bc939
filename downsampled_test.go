package himg

import "testing"

// TestDownsampledSampleImageFlat verifies that a solid-color image
// produces a flat low-res plane equal to that color.
func TestDownsampledSampleImageFlat(t *testing.T) {
	const width, height = 16, 16
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = 77
	}

	var d downsampled
	d.sampleImage(pixels, 1, width, height)

	for i, v := range d.data {
		if v != 77 {
			t.Errorf("sample %d = %d, want 77", i, v)
		}
	}
}

// TestDownsampledUpsampleFlat verifies that upsampling a flat low-res
// plane reproduces the flat value exactly.
func TestDownsampledUpsampleFlat(t *testing.T) {
	d := downsampled{rows: 2, cols: 2, data: []byte{50, 50, 50, 50}}
	var block [64]int16
	d.getLowresBlock(&block, 0, 0)
	for i, v := range block {
		if v != 50 {
			t.Errorf("block[%d] = %d, want 50", i, v)
		}
	}
}

// TestLowResPredictiveRoundTrip verifies encodeLowResPlane followed by
// decodeLowResPlane reproduces the same reconstructed plane (lossy but
// self-consistent -- the decoder must see exactly what the encoder
// subtracted).
func TestLowResPredictiveRoundTrip(t *testing.T) {
	const width, height = 64, 48
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = byte((x*7 + y*13) % 256)
		}
	}

	var d downsampled
	d.sampleImage(pixels, 1, width, height)
	original := append([]byte(nil), d.data...)

	m := newLowResMapper(50)
	buf := encodeLowResPlane(&d, m)

	decoded, err := decodeLowResPlane(buf, d.rows, d.cols, m)
	if err != nil {
		t.Fatalf("decodeLowResPlane: %v", err)
	}

	if len(decoded.data) != len(d.data) {
		t.Fatalf("length mismatch: got %d, want %d", len(decoded.data), len(d.data))
	}
	for i := range d.data {
		if decoded.data[i] != d.data[i] {
			t.Errorf("sample %d: decoded %d, encoder-reconstructed %d", i, decoded.data[i], d.data[i])
		}
	}

	// Sanity: the reconstruction should still be in the ballpark of the
	// true averages (lossy, not unrelated).
	var maxDiff int
	for i := range d.data {
		diff := int(d.data[i]) - int(original[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	if maxDiff > 64 {
		t.Errorf("reconstructed low-res plane drifted too far from true averages: max diff %d", maxDiff)
	}
}
