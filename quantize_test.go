package himg

import "testing"

// TestNearestLog2 checks hand-computed values including the midpoint
// rounding rule: the discarded bit is carried forward, so exact powers
// of two map to their own exponent, midpoints (3, 6) round up, and values
// below a midpoint (5) round down.
func TestNearestLog2(t *testing.T) {
	cases := []struct {
		x    uint16
		want uint8
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 2},
		{6, 3},
		{7, 3},
		{8, 3},
		{1024, 10},
	}
	for _, c := range cases {
		if got := nearestLog2(c.x); got != c.want {
			t.Errorf("nearestLog2(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

// TestQualityToScaleEndpoints checks the documented endpoints of the
// quantizer's quality->scale table.
func TestQualityToScaleEndpoints(t *testing.T) {
	if got := qualityToScale(0, kQualityToScaleTable); got != 65535 {
		t.Errorf("scale(0) = %d, want 65535", got)
	}
	if got := qualityToScale(100, kQualityToScaleTable); got != 0 {
		t.Errorf("scale(100) = %d, want 0", got)
	}
}

// TestQuantizePackUnpackRoundTrip verifies that Pack followed by Unpack
// reproduces the original coefficients to within their shift's rounding
// error.
func TestQuantizePackUnpackRoundTrip(t *testing.T) {
	q := newQuantize(80, true)
	m := newFullResMapper()

	var in [64]int16
	for i := range in {
		in[i] = int16((i%17)*37 - 300)
	}

	for _, chroma := range []bool{false, true} {
		var packed [64]byte
		q.pack(&packed, &in, chroma, m)
		var out [64]int16
		q.unpack(&out, &packed, chroma, m)

		table := &q.shiftTable
		if chroma {
			table = &q.chromaShiftTable
		}
		for i := range in {
			tol := int16(1<<table[i]) + 8
			diff := out[i] - in[i]
			if diff < -tol || diff > tol {
				t.Errorf("chroma=%v coeff %d: in=%d out=%d diff=%d exceeds tolerance %d", chroma, i, in[i], out[i], diff, tol)
			}
		}
	}
}

// TestQuantizeConfigurationRoundTrip exercises nibble packing.
func TestQuantizeConfigurationRoundTrip(t *testing.T) {
	q := newQuantize(42, true)
	buf := make([]byte, q.configurationSize())
	q.getConfiguration(buf)

	restored := &quantize{}
	if err := restored.setConfiguration(buf, true); err != nil {
		t.Fatalf("setConfiguration: %v", err)
	}
	if restored.shiftTable != q.shiftTable || restored.chromaShiftTable != q.chromaShiftTable {
		t.Errorf("restored tables do not match original")
	}
}
