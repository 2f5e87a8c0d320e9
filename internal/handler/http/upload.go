package http

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/utafrali/shopfront/internal/imagestore"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const (
	// maxUploadBytes caps a multipart request body.
	maxUploadBytes = 32 << 20
	// maxFormMemory is kept in memory while parsing; the rest spills to disk.
	maxFormMemory = 10 << 20
)

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return apperrors.InvalidInput("failed to parse multipart form")
	}
	return nil
}

// formImages collects the images sent under field, in form order: file
// parts first, then text values holding base64 data URIs.
func formImages(form *multipart.Form, field string) ([]*imagestore.UploadInput, error) {
	if form == nil {
		return nil, nil
	}

	var images []*imagestore.UploadInput
	for _, fh := range form.File[field] {
		in, err := readFilePart(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, in)
	}
	for i, v := range form.Value[field] {
		in, err := decodeDataURI(v)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s[%d]: %s", field, i, err.Error()))
		}
		images = append(images, in)
	}
	return images, nil
}

func readFilePart(fh *multipart.FileHeader) (*imagestore.UploadInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.InvalidInput("unreadable file " + fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.InvalidInput("unreadable file " + fh.Filename)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &imagestore.UploadInput{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// decodeDataURI decodes "data:<type>;base64,<payload>".
func decodeDataURI(s string) (*imagestore.UploadInput, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("expected a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("data URI must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload")
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &imagestore.UploadInput{
		Filename:    "upload",
		ContentType: contentType,
		Data:        data,
	}, nil
}
