package himg

import "github.com/pkg/errors"

// mapper is a quality-dependent non-linear magnitude <-> 8-bit code
// table. Two variants (lowResMapper, fullResMapper) differ only in their
// default magnitude table and whether it scales with quality.
//
// table holds 256 entries so that table[int8(b)] can be indexed directly
// by a signed-magnitude byte reinterpreted as int8 (see tableAt, which
// adds 128): table[0] is the center (always 0), table[1..127] the
// positive half, table[-127..-1] its negation. Code -128 (0x80) is never
// produced by MapTo8Bit; unmapFrom8Bit decodes it as code -127 so that it
// still yields something finite.
type mapper struct {
	table [256]int16
}

// tableAt returns table[i] for i in [-128,127], matching the C++
// int8_t-indexed array trick via an offset of 128.
func (m *mapper) tableAt(i int) int16 {
	return m.table[i+128]
}

func (m *mapper) setTableAt(i int, v int16) {
	m.table[i+128] = v
}

// mapTo8Bit finds the table index whose magnitude is closest to |x| and
// returns it as a signed-magnitude byte (two's-complement of the index
// when x is negative). Zero always maps to 0.
func (m *mapper) mapTo8Bit(x int16) byte {
	if x == 0 {
		return 0
	}
	absX := x
	neg := false
	if absX < 0 {
		absX = -absX
		neg = true
	}

	var mapped int
	for mapped = 1; mapped < 127; mapped++ {
		if absX < m.tableAt(mapped+1) {
			if (absX - m.tableAt(mapped)) < (m.tableAt(mapped+1) - absX) {
				mapped--
			}
			break
		}
	}

	if mapped < 127 {
		mapped++
	}
	if !neg {
		return byte(mapped)
	}
	return byte(-int8(mapped))
}

// unmapFrom8Bit reverses mapTo8Bit, treating b as a signed 8-bit index.
func (m *mapper) unmapFrom8Bit(b byte) int16 {
	s := int(int8(b))
	if s == -128 {
		s = -127
	}
	if s < 0 {
		return -m.tableAt(-s)
	}
	return m.tableAt(s)
}

// numberOfSingleByteMappingItems returns the count of positive-half
// entries (excluding index 0) that fit in a single byte (< 256).
func (m *mapper) numberOfSingleByteMappingItems() int {
	i := 1
	for ; i < 128; i++ {
		if m.tableAt(i) >= 256 {
			break
		}
	}
	return i - 1
}

// mappingFunctionSize returns the persisted size of the mapping table, in
// bytes, per the §3 compact encoding (one count byte, then single- or
// double-byte entries for the 127 positive-half magnitudes).
func (m *mapper) mappingFunctionSize() int {
	single := m.numberOfSingleByteMappingItems()
	return 1 + single + 2*(127-single)
}

// getMappingFunction writes the persisted form of the table into out,
// which must be at least mappingFunctionSize() bytes.
func (m *mapper) getMappingFunction(out []byte) {
	single := m.numberOfSingleByteMappingItems()
	out[0] = byte(single)
	i := 1
	pos := 1
	for ; i <= single; i++ {
		out[pos] = byte(m.tableAt(i))
		pos++
	}
	for ; i <= 127; i++ {
		x := uint16(m.tableAt(i))
		out[pos] = byte(x & 255)
		out[pos+1] = byte(x >> 8)
		pos += 2
	}
}

// setMappingFunction restores the table from its persisted form and fills
// out the negative half as a negation of the positive half.
func (m *mapper) setMappingFunction(in []byte) error {
	if len(in) < 1 {
		return errors.WithStack(ErrInvalidConfig)
	}
	single := int(in[0])
	if single < 0 || single > 127 {
		return errors.WithStack(ErrInvalidConfig)
	}
	wantSize := 1 + single + 2*(127-single)
	if wantSize != len(in) {
		return errors.WithStack(ErrInvalidConfig)
	}

	i := 1
	pos := 1
	for ; i <= single; i++ {
		m.setTableAt(i, int16(in[pos]))
		pos++
	}
	for ; i <= 127; i++ {
		m.setTableAt(i, int16(uint16(in[pos])|uint16(in[pos+1])<<8))
		pos += 2
	}

	m.setTableAt(0, 0)
	for k := 1; k <= 127; k++ {
		m.setTableAt(-k, -m.tableAt(k))
	}
	m.setTableAt(-128, m.tableAt(-127))
	return nil
}

// kLowResMappingTable is the hand-tuned low-res magnitude table (indices
// 0..127; index 0 is unused and stays zero).
var kLowResMappingTable = [128]int16{
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23,
	24, 25, 26, 27, 28, 29, 30, 31,
	32, 33, 34, 35, 36, 37, 38, 39,
	40, 41, 42, 43, 44, 45, 46, 47,
	48, 49, 50, 51, 52, 53, 54, 55,
	56, 57, 58, 59, 60, 61, 62, 63,
	64, 65, 67, 68, 70, 71, 73, 74,
	76, 78, 79, 81, 83, 85, 87, 89,
	91, 93, 95, 97, 99, 102, 104, 106,
	109, 111, 114, 117, 119, 122, 125, 128,
	131, 134, 137, 140, 143, 146, 150, 153,
	156, 160, 164, 167, 171, 175, 178, 182,
	186, 190, 195, 199, 203, 207, 212, 216,
	221, 226, 230, 235, 240, 245, 250, 255,
}

// kFullResMappingTable is designed to give five bits of precision for
// magnitudes 0-50 (where almost all transformed coefficients land) and
// about four bits above that.
var kFullResMappingTable = [128]int16{
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23,
	24, 25, 26, 27, 28, 29, 30, 31,
	32, 33, 34, 35, 36, 37, 38, 39,
	40, 41, 42, 43, 44, 45, 46, 47,
	48, 49, 51, 52, 54, 57, 59, 62,
	65, 68, 72, 76, 81, 86, 92, 98,
	105, 113, 121, 130, 140, 151, 163, 176,
	190, 205, 221, 239, 259, 280, 303, 327,
	354, 382, 413, 446, 482, 520, 561, 605,
	653, 703, 757, 815, 876, 942, 1013, 1087,
	1167, 1252, 1342, 1438, 1540, 1649, 1764, 1885,
	2015, 2151, 2296, 2450, 2612, 2783, 2965, 3156,
	3358, 3571, 3796, 4032, 4282, 4545, 4821, 5112,
	5418, 5740, 6078, 6433, 6806, 7198, 7608, 8039,
}

type qualityScale struct {
	quality, scale int
}

// kLowResMapScaleTable drives the low-res mapper's quality coupling: a
// piecewise-linear interpolation between these (quality, scale) knots
// gives the ramp factor (in 1/16ths) used to index into
// kLowResMappingTable.
var kLowResMapScaleTable = []qualityScale{
	{0, 120},
	{5, 90},
	{10, 70},
	{20, 40},
	{30, 32},
	{40, 26},
	{50, 20},
	{100, 16},
}

// qualityToScale performs the standard piecewise-linear lookup shared by
// the low-res mapper and the quantizer (each with its own table).
func qualityToScale(quality int, table []qualityScale) int {
	idx := 0
	for ; idx < len(table)-1; idx++ {
		if table[idx+1].quality > quality {
			break
		}
	}
	if idx >= len(table)-1 {
		return table[len(table)-1].scale
	}

	q1, s1 := table[idx].quality, table[idx].scale
	q2, s2 := table[idx+1].quality, table[idx+1].scale
	denom := q2 - q1
	return s1 + ((s2-s1)*(quality-q1)+(denom>>1))/denom
}

// newLowResMapper builds a mapper scaled for the given quality, per §4.3.
func newLowResMapper(quality int) *mapper {
	m := &mapper{}
	indexScale := int16(qualityToScale(quality, kLowResMapScaleTable))
	for i := int16(0); i < 128; i++ {
		index := (i*indexScale + 8) >> 4
		if index > 127 {
			index = 127
		}
		m.setTableAt(int(i), kLowResMappingTable[index])
	}
	for k := 1; k <= 127; k++ {
		m.setTableAt(-k, -m.tableAt(k))
	}
	return m
}

// newFullResMapper builds the fixed full-res mapper. Quality does not
// affect this table.
func newFullResMapper() *mapper {
	m := &mapper{}
	for i := 0; i < 128; i++ {
		m.setTableAt(i, kFullResMappingTable[i])
	}
	for k := 1; k <= 127; k++ {
		m.setTableAt(-k, -m.tableAt(k))
	}
	return m
}
