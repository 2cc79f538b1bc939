package main

import (
	"flag"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/gen2brain/himg"
)

func main() {
	log.SetFlags(0)

	quality := flag.Int("q", 80, "quality (0-100)")
	rgb := flag.Bool("rgb", false, "disable the YCbCr color transform")
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatal("usage: himgenc [-q N] [-rgb] <input> <output.himg>")
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	f, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		log.Fatalf("error: decoding %s: %v", inPath, err)
	}

	pixels, width, height, numChannels := flattenImage(img)

	out, err := himg.Encode(pixels, width, height, numChannels, numChannels, himg.Options{
		Quality:  *quality,
		UseYCbCr: !*rgb,
	})
	if err != nil {
		log.Fatalf("error: encoding: %v", err)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		log.Fatalf("error: writing %s: %v", outPath, err)
	}
}

// flattenImage converts any image.Image into a tightly packed RGBA byte
// buffer. The alpha channel is always kept (numChannels is always 4),
// since image.Image reports an alpha value for every pixel via At.
func flattenImage(img image.Image) (pixels []byte, width, height, numChannels int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	numChannels = 4
	pixels = make([]byte, width*height*numChannels)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pixels[i+0] = byte(r >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(b >> 8)
			pixels[i+3] = byte(a >> 8)
			i += numChannels
		}
	}
	return pixels, width, height, numChannels
}
