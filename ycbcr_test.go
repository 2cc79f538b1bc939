package himg

import "testing"

// TestYCbCrRoundTrip verifies that converting a buffer of representative
// RGB values to YCbCr and back reproduces the original within the
// rounding error inherent to the multiplier-less approximation.
func TestYCbCrRoundTrip(t *testing.T) {
	const width, height, numChannels = 4, 1, 3
	in := []byte{
		0, 0, 0,
		255, 255, 255,
		128, 64, 32,
		10, 200, 90,
	}
	ycbcr := make([]byte, len(in))
	rgbToYCbCr(ycbcr, in, width, height, numChannels, numChannels)

	out := make([]byte, len(in))
	copy(out, ycbcr)
	yCbCrToRGB(out, width, numChannels)

	for i := range in {
		diff := int(in[i]) - int(out[i])
		if diff < -2 || diff > 2 {
			t.Errorf("pixel component %d: got %d, want ~%d (diff %d)", i, out[i], in[i], diff)
		}
	}
}

// TestYCbCrAlphaPassthrough verifies that channels beyond index 2 are
// carried through both transforms unmodified.
func TestYCbCrAlphaPassthrough(t *testing.T) {
	const width, height, numChannels = 2, 1, 4
	in := []byte{10, 20, 30, 111, 200, 150, 90, 222}
	ycbcr := make([]byte, len(in))
	rgbToYCbCr(ycbcr, in, width, height, numChannels, numChannels)

	if ycbcr[3] != 111 || ycbcr[7] != 222 {
		t.Fatalf("alpha not preserved by forward transform: %v", ycbcr)
	}

	yCbCrToRGB(ycbcr, width, numChannels)
	if ycbcr[3] != 111 || ycbcr[7] != 222 {
		t.Fatalf("alpha not preserved by inverse transform: %v", ycbcr)
	}
}

// TestYCbCrSolidColor verifies the exact formula on a known input: a
// solid (128,64,32) pixel, matching the values used by the end-to-end
// solid-color test in himg_test.go.
func TestYCbCrSolidColor(t *testing.T) {
	in := []byte{128, 64, 32}
	out := make([]byte, 3)
	rgbToYCbCr(out, in, 1, 1, 3, 3)

	wantY := byte((128 + 2*64 + 32 + 2) >> 2)
	wantCb := byte((32 - 64 + 256) >> 1)
	wantCr := byte((128 - 64 + 256) >> 1)
	if out[0] != wantY || out[1] != wantCb || out[2] != wantCr {
		t.Fatalf("got Y=%d Cb=%d Cr=%d, want Y=%d Cb=%d Cr=%d", out[0], out[1], out[2], wantY, wantCb, wantCr)
	}
}
