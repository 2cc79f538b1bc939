package himg

// rgbToYCbCr converts an interleaved RGB(A...) pixel buffer to YCbCr in
// place of the first three channels, leaving any channel beyond index 2
// (e.g. alpha) untouched. This is a reversible, multiplier-less
// approximation, not a standard broadcast YCbCr:
//
//	Y  = (R + 2G + B + 2) >> 2
//	Cb = (B - G + 256) >> 1
//	Cr = (R - G + 256) >> 1
func rgbToYCbCr(out, in []byte, width, height, pixelStride, numChannels int) {
	for y := 0; y < height; y++ {
		o := out[y*width*pixelStride:]
		p := in[y*width*pixelStride:]
		for x := 0; x < width; x++ {
			r := int16(p[0])
			g := int16(p[1])
			b := int16(p[2])
			o[0] = byte((r + 2*g + b + 2) >> 2)
			o[1] = byte((b - g + 256) >> 1)
			o[2] = byte((r - g + 256) >> 1)
			for ch := 3; ch < numChannels; ch++ {
				o[ch] = p[ch]
			}
			p = p[pixelStride:]
			o = o[pixelStride:]
		}
	}
}

// yCbCrToRGB converts one row of an interleaved YCbCr(A...) buffer back to
// RGB in place. Channels beyond index 2 pass through unchanged.
func yCbCrToRGB(buf []byte, width, numChannels int) {
	b := buf
	for x := 0; x < width; x++ {
		y := int16(b[0])
		cb := (int16(b[1]) << 1) - 255
		cr := (int16(b[2]) << 1) - 255
		g := y - ((cb + cr + 2) >> 2)
		bl := g + cb
		r := g + cr
		b[0] = clamp8(r)
		b[1] = clamp8(g)
		b[2] = clamp8(bl)
		b = b[numChannels:]
	}
}

// clamp8 saturates a signed value to the [0,255] byte range.
func clamp8(x int16) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}
