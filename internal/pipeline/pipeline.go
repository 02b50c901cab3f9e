// Package pipeline drives the per-image processing chain: preprocess, OCR,
// normalize, extract, aggregate.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"receipt-extract/pkg/extract"
	"receipt-extract/pkg/ocr"
)

// Preprocessor turns an image file into a binarized image ready for OCR.
type Preprocessor interface {
	Preprocess(path string) (image.Image, error)
}

// Recognizer performs OCR on a preprocessed image. Empty text is a valid
// result.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecordStore optionally persists per-image outcomes.
type RecordStore interface {
	SaveRecord(rec extract.Record) error
	SaveFailure(image, reason string) error
}

// ImagePreprocessor adapts ocr.Preprocess with fixed options.
type ImagePreprocessor struct {
	Opts ocr.Options
}

func (p ImagePreprocessor) Preprocess(path string) (image.Image, error) {
	return ocr.Preprocess(path, p.Opts)
}

// Failure reports one image that was skipped. The batch continues without
// it.
type Failure struct {
	Image string
	Err   error
}

// Runner processes a directory of receipt images sequentially. Store and
// Log may be nil.
type Runner struct {
	Pre      Preprocessor
	OCR      Recognizer
	Registry *extract.Registry
	Store    RecordStore
	Log      *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Run processes every supported image under dir in deterministic order and
// returns the aggregated table plus the per-image failures. Only an
// unreadable input directory is fatal; a cancelled context stops early with
// the rows aggregated so far intact.
func (r *Runner) Run(ctx context.Context, dir string) (*Table, []Failure, error) {
	files, err := ListImages(dir)
	if err != nil {
		return nil, nil, err
	}
	table := NewTable(r.Registry.Fields())
	var failures []Failure
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return table, failures, err
		}
		rec, err := r.ProcessOne(ctx, filepath.Join(dir, name))
		if err != nil {
			failures = append(failures, Failure{Image: name, Err: err})
			r.logger().Warn("skipping image", "image", name, "error", err)
			if r.Store != nil {
				if serr := r.Store.SaveFailure(name, err.Error()); serr != nil {
					r.logger().Warn("persist failure", "image", name, "error", serr)
				}
			}
			continue
		}
		table.Append(rec)
		r.logger().Info("processed image", "image", name)
		if r.Store != nil {
			if serr := r.Store.SaveRecord(rec); serr != nil {
				r.logger().Warn("persist record", "image", name, "error", serr)
			}
		}
	}
	return table, failures, nil
}

// ProcessOne runs the full chain for a single image file.
func (r *Runner) ProcessOne(ctx context.Context, path string) (extract.Record, error) {
	img, err := r.Pre.Preprocess(path)
	if err != nil {
		return extract.Record{}, fmt.Errorf("preprocess: %w", err)
	}
	raw, err := r.OCR.Recognize(ctx, img)
	if err != nil {
		return extract.Record{}, fmt.Errorf("ocr: %w", err)
	}
	clean := extract.Normalize(raw)
	return extract.Extract(filepath.Base(path), clean, r.Registry), nil
}

// ListImages returns the supported image files directly under dir. Order is
// numeric when every basename is an integer ("2.jpg" before "10.jpg") and
// lexical otherwise, so output rows are reproducible across filesystems.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Slice(out, func(i, j int) bool { return imageLess(out[i], out[j]) })
	return out, nil
}

func imageLess(a, b string) bool {
	na, aok := numericBase(a)
	nb, bok := numericBase(b)
	if aok && bok {
		if na != nb {
			return na < nb
		}
	}
	return a < b
}

func numericBase(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
