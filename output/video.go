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
	log "github.com/sirupsen/logrus"
)

// CreateVideoFromImages writes the images at imagePaths as frames of an MJPEG
// AVI at fps frames per second. Frames are drawn onto a canvas the size of the
// first image.
func CreateVideoFromImages(imagePaths []string, outputPath string, fps int32) error {
	if len(imagePaths) == 0 {
		return fmt.Errorf("no images provided")
	}
	if !strings.HasSuffix(outputPath, ".avi") {
		outputPath += ".avi"
	}
	if fps <= 0 {
		fps = 2
	}

	first, err := decodeImage(imagePaths[0])
	if err != nil {
		return err
	}
	bounds := first.Bounds()

	writer, err := mjpeg.New(outputPath, int32(bounds.Dx()), int32(bounds.Dy()), fps)
	if err != nil {
		return fmt.Errorf("failed to create video %s: %w", outputPath, err)
	}
	defer writer.Close()

	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for _, path := range imagePaths {
		img, err := decodeImage(path)
		if err != nil {
			return err
		}
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Over)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("failed to encode frame %s: %w", path, err)
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to add frame %s: %w", path, err)
		}
	}

	log.WithField("path", outputPath).Infof("video created with %d frames", len(imagePaths))
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
