// Package server exposes single-image extraction over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"receipt-extract/internal/pipeline"
	"receipt-extract/models"
	"receipt-extract/pkg/extract"
	"receipt-extract/pkg/ocr"
)

// RecordStore is the persistence surface the server needs. Nil disables
// the records endpoint and write-through.
type RecordStore interface {
	SaveRecord(rec extract.Record) error
	List(limit int) ([]models.ExtractionRecord, error)
}

// Server handles ad-hoc extraction requests for single uploaded receipts.
type Server struct {
	OCR        pipeline.Recognizer
	Store      RecordStore
	Log        *slog.Logger
	registries map[string]*extract.Registry
}

// New builds a server around the given recognizer. store may be nil.
func New(rec pipeline.Recognizer, store RecordStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		OCR:   rec,
		Store: store,
		Log:   log,
		registries: map[string]*extract.Registry{
			"broad":     extract.NewBroadRegistry(),
			"banksplit": extract.NewBankSplitRegistry(),
		},
	}
}

// Routes wires the handlers onto a gin engine.
func (s *Server) Routes() *gin.Engine {
	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/extract", s.extractHandler)
	r.GET("/records", s.listRecordsHandler)
	return r
}

// extractHandler accepts a multipart image upload plus optional "registry",
// "threshold" and "denoise" form fields and returns the extracted record.
func (s *Server) extractHandler(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	reg, ok := s.registries[c.DefaultPostForm("registry", "broad")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown registry"})
		return
	}
	method, err := ocr.ParseMethod(c.DefaultPostForm("threshold", string(ocr.MethodOtsu)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	denoise, _ := strconv.ParseBool(c.DefaultPostForm("denoise", "false"))

	tmpDir, err := os.MkdirTemp("", "receipt-upload-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temp dir failed"})
		return
	}
	defer os.RemoveAll(tmpDir)
	tmpPath := filepath.Join(tmpDir, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving upload failed"})
		return
	}

	img, err := ocr.Preprocess(tmpPath, ocr.Options{Method: method, Denoise: denoise})
	if err != nil {
		if errors.Is(err, ocr.ErrUnreadableImage) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image could not be decoded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preprocessing failed"})
		return
	}
	text, err := s.OCR.Recognize(c.Request.Context(), img)
	if err != nil {
		s.Log.Error("ocr failed", "image", fh.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ocr failed"})
		return
	}

	rec := extract.Extract(fh.Filename, extract.Normalize(text), reg)
	if s.Store != nil {
		if err := s.Store.SaveRecord(rec); err != nil {
			s.Log.Warn("persist record", "image", rec.Image, "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"image": rec.Image, "fields": rec.Map()})
}

func (s *Server) listRecordsHandler(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	rows, err := s.Store.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
