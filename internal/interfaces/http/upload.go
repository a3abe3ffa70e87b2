package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
)

// MaxFileSize is the hard per-file ceiling; configuration may only lower it
const MaxFileSize int64 = 5 << 20

var errFileTooLarge = errors.New("file exceeds the maximum upload size")

// multipart overhead allowed on top of the file payloads of one request
const formOverhead = 1 << 20

// limitBody caps the request body before multipart parsing starts
func limitBody(c *gin.Context, files int, maxFileSize int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(files)*maxFileSize+formOverhead)
}

// readFile loads one multipart file, enforcing the per-file limit and sniffing its MIME type.
// The declared Content-Type is ignored; browsers routinely send application/octet-stream.
func readFile(header *multipart.FileHeader, maxFileSize int64) (service.FileUpload, error) {
	if header.Size > maxFileSize {
		return service.FileUpload{}, fmt.Errorf("%w: %s is %d bytes, limit %d", errFileTooLarge, header.Filename, header.Size, maxFileSize)
	}

	f, err := header.Open()
	if err != nil {
		return service.FileUpload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return service.FileUpload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > maxFileSize {
		return service.FileUpload{}, fmt.Errorf("%w: %s", errFileTooLarge, header.Filename)
	}

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}

	return service.FileUpload{
		FileName: name,
		MimeType: mimetype.Detect(content).String(),
		Content:  content,
	}, nil
}

// parseForm parses the multipart body and translates size overruns into errFileTooLarge
func parseForm(c *gin.Context) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: request body over %d bytes", errFileTooLarge, maxErr.Limit)
		}
		return nil, apperr.Validation("expected a multipart/form-data body: %v", err)
	}
	return form, nil
}
