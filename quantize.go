package himg

import "github.com/pkg/errors"

// kShiftTableBase is the luminance quantization base, shamelessly
// borrowed from libjpeg 6a.
var kShiftTableBase = [64]uint8{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// kChromaShiftTableBase is the chrominance quantization base, inspired by
// libjpeg 6a.
var kChromaShiftTableBase = [64]uint8{
	17, 18, 24, 47, 100, 110, 115, 120,
	18, 21, 26, 66, 100, 110, 118, 121,
	24, 26, 56, 100, 100, 110, 120, 122,
	47, 66, 100, 100, 100, 110, 120, 123,
	100, 100, 100, 100, 100, 110, 120, 124,
	110, 110, 110, 110, 110, 110, 110, 123,
	120, 120, 120, 120, 120, 110, 100, 122,
	124, 124, 126, 126, 125, 123, 122, 105,
}

// kQualityToScaleTable is tuned so that compressed size grows roughly
// continuously with the quality setting.
var kQualityToScaleTable = []qualityScale{
	{0, 65535},
	{10, 32512},
	{20, 13568},
	{30, 5120},
	{40, 2560},
	{50, 1024},
	{60, 768},
	{80, 256},
	{100, 0},
}

// nearestLog2 returns the integer k such that 2^k is closest to x, with
// midpoints rounded up: the discarded low bit at each shift is carried
// forward as a running rounding adjustment.
func nearestLog2(x uint16) uint8 {
	var y, rounding uint8
	for x > 1 {
		y++
		rounding = uint8(x & 1)
		x >>= 1
	}
	return y + rounding
}

func makeShiftTable(base *[64]uint8, quality int) [64]uint8 {
	scale := qualityToScale(quality, kQualityToScaleTable)
	var shiftTable [64]uint8
	for i := 0; i < 64; i++ {
		coeffScale := uint16((int(base[i])*scale + 512) >> 10)
		shift := nearestLog2(coeffScale)
		if shift > 15 {
			shift = 15
		}
		shiftTable[i] = shift
	}
	return shiftTable
}

// quantize holds the two per-coefficient shift tables (luma and,
// optionally, chroma) derived once per image from the quality setting.
type quantize struct {
	shiftTable       [64]uint8
	chromaShiftTable [64]uint8
	hasChroma        bool
}

func newQuantize(quality int, hasChroma bool) *quantize {
	q := &quantize{hasChroma: hasChroma}
	q.shiftTable = makeShiftTable(&kShiftTableBase, quality)
	if hasChroma {
		q.chromaShiftTable = makeShiftTable(&kChromaShiftTableBase, quality)
	}
	return q
}

// pack quantizes and maps a forward-transformed 8x8 block (64 signed
// coefficients in natural order) into 64 signed-magnitude bytes.
func (q *quantize) pack(out *[64]byte, in *[64]int16, chromaChannel bool, m *mapper) {
	table := &q.shiftTable
	if chromaChannel {
		table = &q.chromaShiftTable
	}
	for i := 0; i < 64; i++ {
		shift := table[i]
		var round int16
		if shift != 0 {
			round = 1 << (shift - 1)
		}
		x := in[i]
		if x < 0 {
			x = -((-x + round) >> shift)
		} else {
			x = (x + round) >> shift
		}
		out[i] = m.mapTo8Bit(x)
	}
}

// unpack reverses pack: unmap then shift left.
func (q *quantize) unpack(out *[64]int16, in *[64]byte, chromaChannel bool, m *mapper) {
	table := &q.shiftTable
	if chromaChannel {
		table = &q.chromaShiftTable
	}
	for i := 0; i < 64; i++ {
		out[i] = m.unmapFrom8Bit(in[i]) << table[i]
	}
}

// configurationSize returns the persisted size, in bytes, of the
// quantize configuration (32 bytes for luma only, 64 with chroma).
func (q *quantize) configurationSize() int {
	if q.hasChroma {
		return 64
	}
	return 32
}

// getConfiguration nibble-packs the shift table(s) into out.
func (q *quantize) getConfiguration(out []byte) {
	for i := 0; i < 32; i++ {
		out[i] = q.shiftTable[i*2]<<4 | q.shiftTable[i*2+1]
	}
	if q.hasChroma {
		for i := 0; i < 32; i++ {
			out[32+i] = q.chromaShiftTable[i*2]<<4 | q.chromaShiftTable[i*2+1]
		}
	}
}

// setConfiguration restores the shift table(s) from their nibble-packed
// form.
func (q *quantize) setConfiguration(in []byte, hasChroma bool) error {
	q.hasChroma = hasChroma
	want := 32
	if hasChroma {
		want = 64
	}
	if len(in) != want {
		return errors.WithStack(ErrInvalidConfig)
	}
	for i := 0; i < 32; i++ {
		x := in[i]
		q.shiftTable[i*2] = x >> 4
		q.shiftTable[i*2+1] = x & 15
	}
	if hasChroma {
		for i := 0; i < 32; i++ {
			x := in[32+i]
			q.chromaShiftTable[i*2] = x >> 4
			q.chromaShiftTable[i*2+1] = x & 15
		}
	}
	return nil
}
