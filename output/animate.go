package output

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/icza/mjpeg"
)

// CreateVideoFromImages writes the images as frames of an MJPEG AVI. Frames are drawn on a
// canvas the size of the first image, since cropped images can differ by a few rows.
func CreateVideoFromImages(imagePaths []string, outputPath string, fps int32) error {
	if len(imagePaths) == 0 {
		return fmt.Errorf("no images to animate")
	}
	if !strings.HasSuffix(outputPath, ".avi") {
		outputPath += ".avi"
	}
	if fps < 1 {
		fps = 2
	}

	first, err := decodeImage(imagePaths[0])
	if err != nil {
		return err
	}
	bounds := first.Bounds()
	width := int32(bounds.Dx())
	height := int32(bounds.Dy())

	if err := ensureDir(outputPath); err != nil {
		return err
	}
	writer, err := mjpeg.New(outputPath, width, height, fps)
	if err != nil {
		return err
	}

	for _, path := range imagePaths {
		img, err := decodeImage(path)
		if err != nil {
			writer.Close()
			return err
		}
		frame := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		draw.Draw(frame, frame.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(frame, frame.Bounds(), img, img.Bounds().Min, draw.Over)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 100}); err != nil {
			writer.Close()
			return err
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
