package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedOCR struct {
	text string
	err  error
}

func (c cannedOCR) Recognize(_ context.Context, _ image.Image) (string, error) {
	return c.text, c.err
}

func uploadBody(t *testing.T, fields map[string]string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if imageBytes != nil {
		fw, err := mw.CreateFormFile("image", "1.jpg")
		require.NoError(t, err)
		_, err = fw.Write(imageBytes)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(20, 20, color.NRGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func perform(r http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, body)
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExtractEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(cannedOCR{text: "From: Alice Khan To: Bob Shah Amount: Rs. 210.00"}, nil, nil)
	r := srv.Routes()

	body, ct := uploadBody(t, nil, pngBytes(t))
	resp := perform(r, http.MethodPost, "/extract", body, ct)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Image  string             `json:"image"`
		Fields map[string]*string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "1.jpg", out.Image)
	require.NotNil(t, out.Fields["Sender"])
	assert.Equal(t, "Alice Khan", *out.Fields["Sender"])
	require.NotNil(t, out.Fields["Amount"])
	assert.Equal(t, "210.00", *out.Fields["Amount"])
	assert.Nil(t, out.Fields["Bank_Details"])
}

func TestExtractEndpointMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(cannedOCR{}, nil, nil).Routes()
	body, ct := uploadBody(t, map[string]string{"registry": "broad"}, nil)
	resp := perform(r, http.MethodPost, "/extract", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExtractEndpointUnknownRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(cannedOCR{}, nil, nil).Routes()
	body, ct := uploadBody(t, map[string]string{"registry": "nope"}, pngBytes(t))
	resp := perform(r, http.MethodPost, "/extract", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExtractEndpointUnreadableImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(cannedOCR{}, nil, nil).Routes()
	body, ct := uploadBody(t, nil, []byte("definitely not an image"))
	resp := perform(r, http.MethodPost, "/extract", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRecordsWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(cannedOCR{}, nil, nil).Routes()
	resp := perform(r, http.MethodGet, "/records", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(cannedOCR{}, nil, nil).Routes()
	resp := perform(r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
}
