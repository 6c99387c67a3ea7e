// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// ErrTooLarge is returned when a body or upload exceeds its limit.
var ErrTooLarge = errors.New("bind: request body too large")

// maxBodyBytes returns the configured JSON body size limit (default 4 MB).
func maxBodyBytes() int64 {
	if n := int64(config.Int("MAX_BODY_BYTES", 4<<20)); n > 0 {
		return n
	}
	return 4 << 20
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

// File reads the multipart file named field, refusing anything larger than
// maxBytes. The caller must close the returned file.
func File(r *http.Request, field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	// Leave room for the multipart envelope and other fields.
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, ErrTooLarge
		}
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("missing file field %q: %w", field, err)
	}
	if hdr.Size > maxBytes {
		f.Close()
		return nil, nil, ErrTooLarge
	}
	return f, hdr, nil
}
