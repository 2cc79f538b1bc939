package himg

import "encoding/binary"

// Options controls Encode's behavior.
type Options struct {
	// Quality is 0..100; higher values mean larger, more faithful output.
	Quality int
	// UseYCbCr requests the reversible color transform of §4.1. Silently
	// degrades to false when numChannels < 3.
	UseYCbCr bool
}

const formatVersion = 1

// encoder holds the per-call state needed to build one container. Unlike
// the decoder, there is no pooling: the contract is single-threaded and
// encode calls are not assumed to be as latency-sensitive as decode.
type encoder struct {
	width, height, pixelStride, numChannels int
	useYCbCr                                bool
	quality                                 int
}

func encode(pixels []byte, width, height, pixelStride, numChannels int, opts Options) ([]byte, error) {
	if width <= 0 || height <= 0 || numChannels < 1 || numChannels > 4 {
		return nil, errWrap(ErrInvalidParam)
	}
	if pixelStride < numChannels {
		return nil, errWrap(ErrInvalidParam)
	}
	quality := opts.Quality
	if quality < 0 {
		quality = 0
	} else if quality > 100 {
		quality = 100
	}

	e := &encoder{
		width:       width,
		height:      height,
		pixelStride: pixelStride,
		numChannels: numChannels,
		useYCbCr:    opts.UseYCbCr && numChannels >= 3,
		quality:     quality,
	}
	return e.run(pixels)
}

func (e *encoder) run(pixels []byte) ([]byte, error) {
	working := pixels
	if e.useYCbCr {
		working = make([]byte, len(pixels))
		rgbToYCbCr(working, pixels, e.width, e.height, e.pixelStride, e.numChannels)
	}

	w := newRIFFWriter()

	frmt := make([]byte, 11)
	frmt[0] = formatVersion
	binary.LittleEndian.PutUint32(frmt[1:5], uint32(e.width))
	binary.LittleEndian.PutUint32(frmt[5:9], uint32(e.height))
	frmt[9] = byte(e.numChannels)
	if e.useYCbCr {
		frmt[10] = 1
	}
	w.writeChunk(fccFRMT, frmt)

	lowResMapper := newLowResMapper(e.quality)
	lmapBuf := make([]byte, lowResMapper.mappingFunctionSize())
	lowResMapper.getMappingFunction(lmapBuf)
	w.writeChunk(fccLMAP, lmapBuf)

	planes := make([]downsampled, e.numChannels)
	var lresBuf []byte
	for c := 0; c < e.numChannels; c++ {
		planes[c].sampleImage(working[c:], e.pixelStride, e.width, e.height)
		lresBuf = append(lresBuf, encodeLowResPlane(&planes[c], lowResMapper)...)
	}
	lresCompressed := make([]byte, huffmanMaxCompressedSize(len(lresBuf)))
	n := huffmanCompress(lresCompressed, lresBuf, len(lresBuf))
	w.writeChunk(fccLRES, lresCompressed[:n])

	hasChroma := e.useYCbCr && e.numChannels >= 3
	q := newQuantize(e.quality, hasChroma)
	qcfgBuf := make([]byte, q.configurationSize())
	q.getConfiguration(qcfgBuf)
	w.writeChunk(fccQCFG, qcfgBuf)

	fullResMapper := newFullResMapper()
	fmapBuf := make([]byte, fullResMapper.mappingFunctionSize())
	fullResMapper.getMappingFunction(fmapBuf)
	w.writeChunk(fccFMAP, fmapBuf)

	rows, cols := planes[0].rows, planes[0].cols
	rowBufSize := cols * e.numChannels * 64
	fullRes := make([]byte, rows*rowBufSize)

	var block [64]int16
	var lowres [64]int16
	var residual [64]int16
	var coeffs [64]int16
	var packed [64]byte

	for v := 0; v < rows; v++ {
		rowBase := v * rowBufSize
		for c := 0; c < e.numChannels; c++ {
			chromaChannel := hasChroma && (c == 1 || c == 2)
			base := rowBase + c*cols*64
			for u := 0; u < cols; u++ {
				e.extractBlock(&block, working[c:], u, v)
				planes[c].getLowresBlock(&lowres, u, v)
				for i := 0; i < 64; i++ {
					residual[i] = block[i] - lowres[i]
				}
				hadamardForward(&coeffs, &residual)
				q.pack(&packed, &coeffs, chromaChannel, fullResMapper)
				for i := 0; i < 64; i++ {
					fullRes[base+u+i*cols] = packed[kIndexLUT[i]]
				}
			}
		}
	}

	// +4 bytes per block-row for the size header (worst case extended to
	// 32 bits), plus the usual tree-description margin.
	fresCompressed := make([]byte, huffmanMaxCompressedSize(len(fullRes))+rows*4)
	n = huffmanCompress(fresCompressed, fullRes, rowBufSize)
	w.writeChunk(fccFRES, fresCompressed[:n])

	return w.finish(), nil
}

// extractBlock reads the 8x8 pixel block at block coordinates (u,v) for
// one channel (pixels already sliced to that channel's first byte),
// replicating edge samples beyond the image bounds.
func (e *encoder) extractBlock(out *[64]int16, pixels []byte, u, v int) {
	bx, by := u*8, v*8
	for y := 0; y < 8; y++ {
		sy := min(by+y, e.height-1)
		row := pixels[sy*e.width*e.pixelStride:]
		for x := 0; x < 8; x++ {
			sx := min(bx+x, e.width-1)
			out[y*8+x] = int16(row[sx*e.pixelStride])
		}
	}
}
