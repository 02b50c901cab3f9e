package ocr

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Engine runs Tesseract over preprocessed images. All Tesseract settings are
// explicit per engine instance; nothing is process-global.
type Engine struct {
	Language       string
	TessdataPrefix string // empty uses the system default
}

// NewEngine returns an engine for the given language ("eng" when empty).
func NewEngine(language string) *Engine {
	if language == "" {
		language = "eng"
	}
	return &Engine{Language: language}
}

// Recognize OCRs a binarized image and returns the raw recognized text.
// Empty text is a valid result, not an error.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "receipt-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("temp image: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save temp image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(e.Language)
	if e.TessdataPrefix != "" {
		_ = client.SetTessdataPrefix(e.TessdataPrefix)
	}
	client.SetImage(path)
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}
