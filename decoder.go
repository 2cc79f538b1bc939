package himg

import (
	"encoding/binary"
	"runtime"
	"sync"
	"sync/atomic"
)

// decoder holds the per-call scratch state for one Decode invocation:
// the shared row cursor and failure flag the parallel block-row workers
// coordinate through, plus the tables recovered from the container.
// Instances are pooled since decode is the latency-sensitive path.
type decoder struct {
	width, height, numChannels int
	useYCbCr                   bool

	planes        []downsampled
	quantizeTable *quantize
	fullResMapper *mapper

	cols, rows int
	rowBufSize int
	fullResDec *huffmanDec

	nextRow  atomic.Int64
	failed   atomic.Bool
	firstErr error
}

var decoderPool = sync.Pool{
	New: func() any { return &decoder{} },
}

func (d *decoder) reset() {
	*d = decoder{}
}

func decode(data []byte, maxThreads int) (pixels []byte, width, height, numChannels int, err error) {
	d := decoderPool.Get().(*decoder)
	defer func() {
		d.reset()
		decoderPool.Put(d)
	}()

	// Any panic reaching here -- whether the deliberate errDecode thrown
	// by d.panic, or a raw runtime panic from a malformed stream tripping
	// an unchecked bounds access deep in the Huffman decode fast path --
	// is converted to an error. Decode must never crash its caller on
	// corrupted input; the contract only promises a non-nil error or a
	// buffer of the declared length, never a panic.
	defer func() {
		if r := recover(); r != nil {
			if ed, ok := r.(errDecode); ok {
				err = ed.error
				return
			}
			err = errWrap(ErrHuffman)
		}
	}()

	return d.run(data, maxThreads)
}

func (d *decoder) run(data []byte, maxThreads int) ([]byte, int, int, int, error) {
	r, err := openRIFF(data)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	frmt, err := r.findChunk(fccFRMT)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if len(frmt) != 11 {
		d.panic(ErrMalformedContainer)
	}
	if frmt[0] != formatVersion {
		d.panic(ErrMalformedContainer)
	}
	d.width = int(binary.LittleEndian.Uint32(frmt[1:5]))
	d.height = int(binary.LittleEndian.Uint32(frmt[5:9]))
	d.numChannels = int(frmt[9])
	d.useYCbCr = frmt[10] != 0
	if d.width <= 0 || d.height <= 0 || d.numChannels < 1 || d.numChannels > 4 {
		d.panic(ErrMalformedContainer)
	}

	lmap, err := r.findChunk(fccLMAP)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	lresPayload, err := r.findChunk(fccLRES)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	qcfg, err := r.findChunk(fccQCFG)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	fmap, err := r.findChunk(fccFMAP)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	fresPayload, err := r.findChunk(fccFRES)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	lowResMapper := &mapper{}
	if err := lowResMapper.setMappingFunction(lmap); err != nil {
		return nil, 0, 0, 0, err
	}

	d.rows = (d.height + 7) >> 3
	d.cols = (d.width + 7) >> 3
	macroRows, macroCols := macroBlockGrid(d.rows, d.cols)
	planeSize := macroRows*macroCols + d.rows*d.cols

	lresDec := newHuffmanDec(lresPayload, false)
	if err := lresDec.init(); err != nil {
		return nil, 0, 0, 0, err
	}
	lresBuf := make([]byte, d.numChannels*planeSize)
	if err := lresDec.uncompress(lresBuf); err != nil {
		return nil, 0, 0, 0, err
	}

	d.planes = make([]downsampled, d.numChannels)
	for c := 0; c < d.numChannels; c++ {
		channelBuf := lresBuf[c*planeSize : (c+1)*planeSize]
		plane, err := decodeLowResPlane(channelBuf, d.rows, d.cols, lowResMapper)
		if err != nil {
			return nil, 0, 0, 0, err
		}
		d.planes[c] = *plane
	}

	hasChroma := d.useYCbCr && d.numChannels >= 3
	d.quantizeTable = &quantize{}
	if err := d.quantizeTable.setConfiguration(qcfg, hasChroma); err != nil {
		return nil, 0, 0, 0, err
	}

	d.fullResMapper = &mapper{}
	if err := d.fullResMapper.setMappingFunction(fmap); err != nil {
		return nil, 0, 0, 0, err
	}

	d.rowBufSize = d.cols * d.numChannels * 64
	// huffmanCompress only frames FRES when it holds more than one block-row.
	d.fullResDec = newHuffmanDec(fresPayload, d.rows > 1)
	if err := d.fullResDec.init(); err != nil {
		return nil, 0, 0, 0, err
	}
	if d.rows > 1 && d.fullResDec.numBlocks() != d.rows {
		return nil, 0, 0, 0, errWrap(ErrMalformedContainer)
	}

	out := make([]byte, d.width*d.height*d.numChannels)

	threads := maxThreads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads > d.rows {
		threads = d.rows
	}
	if threads < 1 {
		threads = 1
	}

	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A panic in a worker goroutine is not seen by decode's own
			// recover, so each worker records it as a failure here.
			defer func() {
				if r := recover(); r != nil {
					if ed, ok := r.(errDecode); ok {
						d.recordFailure(ed.error)
						return
					}
					d.recordFailure(errWrap(ErrHuffman))
				}
			}()
			d.decodeRows(out)
		}()
	}
	wg.Wait()

	if d.failed.Load() {
		return nil, 0, 0, 0, d.firstErr
	}

	return out, d.width, d.height, d.numChannels, nil
}

// decodeRows pulls block-rows off the shared cursor until the image is
// exhausted or another worker has already recorded a failure.
func (d *decoder) decodeRows(out []byte) {
	rowBuf := make([]byte, d.rowBufSize)
	hasChroma := d.useYCbCr && d.numChannels >= 3

	for {
		if d.failed.Load() {
			return
		}
		y := int(d.nextRow.Add(8)) - 8
		if y >= d.height {
			return
		}
		v := y >> 3

		var err error
		if d.rows > 1 {
			err = d.fullResDec.uncompressBlock(rowBuf, v)
		} else {
			err = d.fullResDec.uncompress(rowBuf)
		}
		if err != nil {
			d.recordFailure(err)
			return
		}
		if err := d.decodeBlockRow(out, rowBuf, v, hasChroma); err != nil {
			d.recordFailure(err)
			return
		}
	}
}

// recordFailure records err only if this is the first worker to fail;
// the CAS makes that determination race-free without a separate mutex.
func (d *decoder) recordFailure(err error) {
	if d.failed.CompareAndSwap(false, true) {
		d.firstErr = err
	}
}

func (d *decoder) decodeBlockRow(out []byte, rowBuf []byte, v int, hasChroma bool) error {
	var packed [64]byte
	var coeffs [64]int16
	var residual [64]int16
	var lowres [64]int16

	rowPixels := make([]byte, 8*d.width*d.numChannels)

	for c := 0; c < d.numChannels; c++ {
		chromaChannel := hasChroma && (c == 1 || c == 2)
		base := c * d.cols * 64
		for u := 0; u < d.cols; u++ {
			for j := 0; j < 64; j++ {
				packed[j] = rowBuf[base+u+deinterleaveLUT[j]*d.cols]
			}
			d.quantizeTable.unpack(&coeffs, &packed, chromaChannel, d.fullResMapper)
			hadamardInverse(&residual, &coeffs)
			d.planes[c].getLowresBlock(&lowres, u, v)

			bx := u * 8
			for y := 0; y < 8; y++ {
				py := v*8 + y
				if py >= d.height {
					break
				}
				for x := 0; x < 8; x++ {
					px := bx + x
					if px >= d.width {
						break
					}
					sample := clampByte(int(residual[y*8+x]) + int(lowres[y*8+x]))
					rowPixels[y*d.width*d.numChannels+px*d.numChannels+c] = sample
				}
			}
		}
	}

	rowsHere := min(8, d.height-v*8)
	if d.useYCbCr && d.numChannels >= 3 {
		for y := 0; y < rowsHere; y++ {
			row := rowPixels[y*d.width*d.numChannels : (y+1)*d.width*d.numChannels]
			yCbCrToRGB(row, d.width, d.numChannels)
		}
	}

	for y := 0; y < rowsHere; y++ {
		srcRow := rowPixels[y*d.width*d.numChannels : (y+1)*d.width*d.numChannels]
		dstOff := (v*8+y)*d.width*d.numChannels
		copy(out[dstOff:dstOff+d.width*d.numChannels], srcRow)
	}
	return nil
}
