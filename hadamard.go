package himg

// hadamardForward computes the separable 8x8 Walsh-Hadamard transform of
// in, writing into out (which may alias in). No orthonormal scaling is
// applied; the inverse divides by 64 to compensate.
func hadamardForward(out, in *[64]int16) {
	var tmp [64]int16
	for i := 0; i < 8; i++ {
		forward8(tmp[i*8:i*8+8:i*8+8], in[i*8:i*8+8:i*8+8], 1)
	}
	for i := 0; i < 8; i++ {
		forward8Strided(out, &tmp, i)
	}
}

// forward8 runs one 1D 8-point forward Hadamard butterfly over a
// contiguous row (stride 1).
func forward8(out, in []int16, stride int) {
	_ = stride
	a0 := in[0] + in[4]
	a1 := in[1] + in[5]
	a2 := in[2] + in[6]
	a3 := in[3] + in[7]
	a4 := in[0] - in[4]
	a5 := in[1] - in[5]
	a6 := in[2] - in[6]
	a7 := in[3] - in[7]
	b0 := a0 + a2
	b1 := a1 + a3
	b2 := a0 - a2
	b3 := a1 - a3
	b4 := a4 + a6
	b5 := a5 + a7
	b6 := a4 - a6
	b7 := a5 - a7
	out[0] = b0 + b1
	out[1] = b4 + b5
	out[2] = b6 + b7
	out[3] = b2 + b3
	out[4] = b2 - b3
	out[5] = b6 - b7
	out[6] = b4 - b5
	out[7] = b0 - b1
}

// forward8Strided runs the same butterfly over column col of tmp with
// stride 8, writing the result into the same column of blk.
func forward8Strided(blk *[64]int16, tmp *[64]int16, col int) {
	in := [8]int16{
		tmp[col], tmp[8+col], tmp[16+col], tmp[24+col],
		tmp[32+col], tmp[40+col], tmp[48+col], tmp[56+col],
	}
	a0 := in[0] + in[4]
	a1 := in[1] + in[5]
	a2 := in[2] + in[6]
	a3 := in[3] + in[7]
	a4 := in[0] - in[4]
	a5 := in[1] - in[5]
	a6 := in[2] - in[6]
	a7 := in[3] - in[7]
	b0 := a0 + a2
	b1 := a1 + a3
	b2 := a0 - a2
	b3 := a1 - a3
	b4 := a4 + a6
	b5 := a5 + a7
	b6 := a4 - a6
	b7 := a5 - a7
	blk[col] = b0 + b1
	blk[8+col] = b4 + b5
	blk[16+col] = b6 + b7
	blk[24+col] = b2 + b3
	blk[32+col] = b2 - b3
	blk[40+col] = b6 - b7
	blk[48+col] = b4 - b5
	blk[56+col] = b0 - b1
}

// hadamardInverse computes the separable inverse 8x8 Walsh-Hadamard
// transform of in, writing into out (which may alias in). Intermediate
// precision is 32-bit to avoid overflow; each pass shifts right by 3,
// giving the required total divide-by-64.
func hadamardInverse(out, in *[64]int16) {
	var tmp [64]int16
	for i := 0; i < 8; i++ {
		inverse8(tmp[i*8:i*8+8:i*8+8], in[i*8:i*8+8:i*8+8])
	}
	for col := 0; col < 8; col++ {
		inverse8Strided(out, &tmp, col)
	}
}

func inverse8(out, in []int16) {
	a0 := int32(in[0]) + int32(in[4])
	a1 := int32(in[1]) + int32(in[5])
	a2 := int32(in[2]) + int32(in[6])
	a3 := int32(in[3]) + int32(in[7])
	a4 := int32(in[0]) - int32(in[4])
	a5 := int32(in[1]) - int32(in[5])
	a6 := int32(in[2]) - int32(in[6])
	a7 := int32(in[3]) - int32(in[7])
	b0 := a0 + a2
	b1 := a1 + a3
	b2 := a0 - a2
	b3 := a1 - a3
	b4 := a4 + a6
	b5 := a5 + a7
	b6 := a4 - a6
	b7 := a5 - a7
	out[0] = int16((b0 + b1) >> 3)
	out[1] = int16((b4 + b5) >> 3)
	out[2] = int16((b6 + b7) >> 3)
	out[3] = int16((b2 + b3) >> 3)
	out[4] = int16((b2 - b3) >> 3)
	out[5] = int16((b6 - b7) >> 3)
	out[6] = int16((b4 - b5) >> 3)
	out[7] = int16((b0 - b1) >> 3)
}

func inverse8Strided(blk *[64]int16, tmp *[64]int16, col int) {
	a0 := int32(tmp[col]) + int32(tmp[32+col])
	a1 := int32(tmp[8+col]) + int32(tmp[40+col])
	a2 := int32(tmp[16+col]) + int32(tmp[48+col])
	a3 := int32(tmp[24+col]) + int32(tmp[56+col])
	a4 := int32(tmp[col]) - int32(tmp[32+col])
	a5 := int32(tmp[8+col]) - int32(tmp[40+col])
	a6 := int32(tmp[16+col]) - int32(tmp[48+col])
	a7 := int32(tmp[24+col]) - int32(tmp[56+col])
	b0 := a0 + a2
	b1 := a1 + a3
	b2 := a0 - a2
	b3 := a1 - a3
	b4 := a4 + a6
	b5 := a5 + a7
	b6 := a4 - a6
	b7 := a5 - a7
	blk[col] = int16((b0 + b1) >> 3)
	blk[8+col] = int16((b4 + b5) >> 3)
	blk[16+col] = int16((b6 + b7) >> 3)
	blk[24+col] = int16((b2 + b3) >> 3)
	blk[32+col] = int16((b2 - b3) >> 3)
	blk[40+col] = int16((b6 - b7) >> 3)
	blk[48+col] = int16((b4 - b5) >> 3)
	blk[56+col] = int16((b0 - b1) >> 3)
}
