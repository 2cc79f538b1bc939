package himg

// kIndexLUT reorders the 64 coefficients of a quantized block before they
// are interleaved into the full-resolution buffer, so that coefficients of
// similar magnitude (and hence runs of zero) end up adjacent across a
// block-row instead of scattered block by block. Both encoder and decoder
// must agree on exactly this sequence; nothing outside this package reads
// or writes the permutation directly.
var kIndexLUT = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// deinterleaveLUT is the inverse permutation of kIndexLUT, built once at
// package init and shared read-only by every decode.
var deinterleaveLUT = buildDeinterleaveLUT()

func buildDeinterleaveLUT() [64]int {
	var inv [64]int
	for i, v := range kIndexLUT {
		inv[v] = i
	}
	return inv
}
