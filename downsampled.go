package himg

// macroBlockSize is the width and height, in low-res samples, of a
// macro-block: a cluster of samples that shares one predictor selector
// byte.
const macroBlockSize = 16

// downsampled holds one channel's low-resolution plane: a rows x cols
// grid of phase-shifted 8x8-block averages. The stored form is exactly
// what both the encoder (for full-res residual subtraction) and the
// decoder (after predictive decoding) end up holding; there is no
// separate "true average" kept around once predictive coding has run,
// since the encoder must subtract the same lossy reconstruction the
// decoder will have.
type downsampled struct {
	rows, cols int
	data       []byte
}

// sampleImage computes the phase-shifted block averages for one channel
// of pixels (channel selected via a slice already offset to that
// channel's first byte), per §4.6.
func (d *downsampled) sampleImage(pixels []byte, pixelStride, width, height int) {
	d.rows = (height + 7) >> 3
	d.cols = (width + 7) >> 3

	average := make([]byte, d.rows*d.cols)
	idx := 0
	for v := 0; v < d.rows; v++ {
		yMin := max(0, v*8-3)
		yMax := min(height-1, v*8+4)
		for u := 0; u < d.cols; u++ {
			xMin := max(0, u*8-3)
			xMax := min(width-1, u*8+4)
			var sum int
			for y := yMin; y <= yMax; y++ {
				row := pixels[y*width*pixelStride:]
				for x := xMin; x <= xMax; x++ {
					sum += int(row[x*pixelStride])
				}
			}
			count := (xMax - xMin + 1) * (yMax - yMin + 1)
			average[idx] = byte((sum + count/2) / count)
			idx++
		}
	}

	d.data = make([]byte, d.rows*d.cols)
	idx = 0
	for v := 0; v < d.rows; v++ {
		row1 := max(0, v-1)
		row2 := v
		for u := 0; u < d.cols; u++ {
			col1 := max(0, u-1)
			col2 := u
			x11 := int(average[row1*d.cols+col1])
			x12 := int(average[row1*d.cols+col2])
			x21 := int(average[row2*d.cols+col1])
			x22 := int(average[row2*d.cols+col2])
			a1 := (x11 + 15*x12 + 8) >> 4
			a2 := (x21 + 15*x22 + 8) >> 4
			d.data[idx] = byte((a1 + 15*a2 + 8) >> 4)
			idx++
		}
	}
}

// getLowresBlock upsamples the 2x2 neighbourhood of samples around block
// (u,v) to a full 8x8 block via repeated midpoint bilerp, per §4.6.
func (d *downsampled) getLowresBlock(out *[64]int16, u, v int) {
	row1 := v
	row2 := min(d.rows-1, v+1)
	col1 := u
	col2 := min(d.cols-1, u+1)
	x11 := int16(d.data[row1*d.cols+col1])
	x12 := int16(d.data[row1*d.cols+col2])
	x21 := int16(d.data[row2*d.cols+col1])
	x22 := int16(d.data[row2*d.cols+col2])

	var left, right [9]int16
	left[0] = x11
	left[8] = x21
	left[4] = (left[0] + left[8]) >> 1
	left[2] = (left[0] + left[4]) >> 1
	left[6] = (left[4] + left[8]) >> 1
	left[1] = (left[0] + left[2]) >> 1
	left[3] = (left[2] + left[4]) >> 1
	left[5] = (left[4] + left[6]) >> 1
	left[7] = (left[6] + left[8]) >> 1
	right[0] = x12
	right[8] = x22
	right[4] = (right[0] + right[8]) >> 1
	right[2] = (right[0] + right[4]) >> 1
	right[6] = (right[4] + right[8]) >> 1
	right[1] = (right[0] + right[2]) >> 1
	right[3] = (right[2] + right[4]) >> 1
	right[5] = (right[4] + right[6]) >> 1
	right[7] = (right[6] + right[8]) >> 1

	for y := 0; y < 8; y++ {
		a0 := left[y]
		a8 := right[y]
		a4 := (a0 + a8) >> 1
		a2 := (a0 + a4) >> 1
		a6 := (a4 + a8) >> 1
		a1 := (a0 + a2) >> 1
		a3 := (a2 + a4) >> 1
		a5 := (a4 + a6) >> 1
		a7 := (a6 + a8) >> 1
		base := y * 8
		out[base+0] = a0
		out[base+1] = a1
		out[base+2] = a2
		out[base+3] = a3
		out[base+4] = a4
		out[base+5] = a5
		out[base+6] = a6
		out[base+7] = a7
	}
}

// predictLowRes evaluates predictor p against the three neighbour
// samples, per the table in §4.6.
func predictLowRes(p int, s1, s2, s3 int16) int16 {
	switch p {
	case 0:
		return int16(clampByte((3*(int(s2)+int(s3)) - 2*int(s1) + 2) >> 2))
	case 1:
		return s2
	case 2:
		return s3
	case 3:
		return (s2 + s3 + 1) >> 1
	case 4:
		return int16(clampByte(int(s2) + int(s3) - int(s1)))
	default:
		return 0
	}
}

func clampByte(x int) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

// lowResNeighbours returns (s1,s2,s3) for sample (v,u) of a rows x cols
// grid, applying the edge fallback rules: missing left-based neighbours
// fall back to the above sample, missing above-based neighbours fall
// back to the left sample, and the top-left corner falls back to 128.
func lowResNeighbours(recon []int16, cols, u, v int) (s1, s2, s3 int16) {
	hasLeft := u > 0
	hasAbove := v > 0
	switch {
	case hasLeft && hasAbove:
		s1 = recon[(v-1)*cols+u-1]
		s2 = recon[(v-1)*cols+u]
		s3 = recon[v*cols+u-1]
	case hasAbove:
		s2 = recon[(v-1)*cols+u]
		s1, s3 = s2, s2
	case hasLeft:
		s3 = recon[v*cols+u-1]
		s1, s2 = s3, s3
	default:
		s1, s2, s3 = 128, 128, 128
	}
	return
}

// macroBlockGrid returns the macro-block row/column counts for a rows x
// cols low-res grid.
func macroBlockGrid(rows, cols int) (macroRows, macroCols int) {
	return (rows + macroBlockSize - 1) / macroBlockSize, (cols + macroBlockSize - 1) / macroBlockSize
}

// selectPredictors chooses, for each macro-block of a rows x cols sample
// grid, the predictor (0..4) minimizing the sum of squared prediction
// error evaluated against the plane's own values. Ties favour the lower
// predictor index, matching the deterministic tie-break used throughout
// this codec.
func selectPredictors(data []byte, rows, cols int) []int {
	macroRows, macroCols := macroBlockGrid(rows, cols)
	sel := make([]int, macroRows*macroCols)

	plane := make([]int16, rows*cols)
	for i, b := range data {
		plane[i] = int16(b)
	}

	for mr := 0; mr < macroRows; mr++ {
		for mc := 0; mc < macroCols; mc++ {
			vEnd := min(rows, (mr+1)*macroBlockSize)
			uEnd := min(cols, (mc+1)*macroBlockSize)

			best := 0
			bestSSE := int64(-1)
			for p := 0; p < 5; p++ {
				var sse int64
				for v := mr * macroBlockSize; v < vEnd; v++ {
					for u := mc * macroBlockSize; u < uEnd; u++ {
						s1, s2, s3 := lowResNeighbours(plane, cols, u, v)
						pred := predictLowRes(p, s1, s2, s3)
						diff := int64(plane[v*cols+u]) - int64(pred)
						sse += diff * diff
					}
				}
				if bestSSE < 0 || sse < bestSSE {
					bestSSE = sse
					best = p
				}
			}
			sel[mr*macroCols+mc] = best
		}
	}
	return sel
}

// encodeLowResPlane predictively encodes one channel's sample grid into
// selector bytes followed by mapped delta bytes, per §4.6's wire layout.
// It reconstructs samples exactly as the decoder will (using the
// just-written delta, unmapped and added back to the prediction) so that
// d.data ends up holding the same lossy values the decoder reconstructs
// -- required so the full-res stage subtracts identical low-res data on
// both sides.
func encodeLowResPlane(d *downsampled, m *mapper) []byte {
	macroRows, macroCols := macroBlockGrid(d.rows, d.cols)
	sel := selectPredictors(d.data, d.rows, d.cols)

	out := make([]byte, macroRows*macroCols+d.rows*d.cols)
	for i, p := range sel {
		out[i] = byte(p + 2)
	}

	recon := make([]int16, d.rows*d.cols)
	deltaBase := macroRows * macroCols
	for v := 0; v < d.rows; v++ {
		for u := 0; u < d.cols; u++ {
			mr, mc := v/macroBlockSize, u/macroBlockSize
			p := sel[mr*macroCols+mc]
			s1, s2, s3 := lowResNeighbours(recon, d.cols, u, v)
			predicted := predictLowRes(p, s1, s2, s3)

			actual := int16(d.data[v*d.cols+u])
			delta := actual - predicted
			code := m.mapTo8Bit(delta)
			out[deltaBase+v*d.cols+u] = code

			reconDelta := m.unmapFrom8Bit(code)
			recon[v*d.cols+u] = int16(clampByte(int(predicted) + int(reconDelta)))
		}
	}

	for i, r := range recon {
		d.data[i] = byte(r)
	}
	return out
}

// decodeLowResPlane reverses encodeLowResPlane: it reads the selector and
// delta bytes and reconstructs the sample grid.
func decodeLowResPlane(buf []byte, rows, cols int, m *mapper) (*downsampled, error) {
	macroRows, macroCols := macroBlockGrid(rows, cols)
	want := macroRows*macroCols + rows*cols
	if len(buf) != want {
		return nil, errWrap(ErrInvalidConfig)
	}

	sel := buf[:macroRows*macroCols]
	deltas := buf[macroRows*macroCols:]

	recon := make([]int16, rows*cols)
	for v := 0; v < rows; v++ {
		for u := 0; u < cols; u++ {
			mr, mc := v/macroBlockSize, u/macroBlockSize
			p := int(sel[mr*macroCols+mc]) - 2
			if p < 0 || p > 4 {
				return nil, errWrap(ErrInvalidConfig)
			}
			s1, s2, s3 := lowResNeighbours(recon, cols, u, v)
			predicted := predictLowRes(p, s1, s2, s3)

			code := deltas[v*cols+u]
			delta := m.unmapFrom8Bit(code)
			recon[v*cols+u] = int16(clampByte(int(predicted) + int(delta)))
		}
	}

	d := &downsampled{rows: rows, cols: cols, data: make([]byte, rows*cols)}
	for i, r := range recon {
		d.data[i] = byte(r)
	}
	return d, nil
}
