package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/gen2brain/himg"
)

func main() {
	log.SetFlags(0)

	threads := flag.Int("threads", 0, "max decode goroutines (0 = auto)")
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatal("usage: himgdec [-threads N] <input.himg> <output.png>")
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	data, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	pixels, width, height, numChannels, err := himg.Decode(data, *threads)
	if err != nil {
		log.Fatalf("error: decoding %s: %v", inPath, err)
	}

	img := unflattenImage(pixels, width, height, numChannels)

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		log.Fatalf("error: writing %s: %v", outPath, err)
	}
}

func unflattenImage(pixels []byte, width, height, numChannels int) image.Image {
	if numChannels == 1 {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Pix[img.PixOffset(x, y)] = pixels[y*width+x]
			}
		}
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * numChannels
			dst := img.PixOffset(x, y)
			img.Pix[dst+0] = pixels[src+0]
			img.Pix[dst+1] = pixels[src+1]
			if numChannels >= 3 {
				img.Pix[dst+2] = pixels[src+2]
			} else {
				img.Pix[dst+2] = pixels[src+1]
			}
			if numChannels >= 4 {
				img.Pix[dst+3] = pixels[src+3]
			} else {
				img.Pix[dst+3] = 255
			}
		}
	}
	return img
}
