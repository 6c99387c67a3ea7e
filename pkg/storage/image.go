package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes is the default upload ceiling.
const MaxImageBytes = 5 << 20

var (
	// ErrNotImage is returned when the content is not an image.
	ErrNotImage = errors.New("storage: file is not an image")
	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("storage: file is too large")
)

// sniffLen is how much of the upload is read to detect its type.
const sniffLen = 3072

// DetectImage sniffs r and returns its MIME type and extension together with
// a reader that replays the sniffed prefix. Only image/* passes.
func DetectImage(r io.Reader) (mime, ext string, body io.Reader, err error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", nil, fmt.Errorf("storage: read upload: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", "", nil, fmt.Errorf("%w (detected %s)", ErrNotImage, mt.String())
	}
	return mt.String(), mt.Extension(), io.MultiReader(bytes.NewReader(head), r), nil
}

// ObjectName returns "<dir>/<unix-millis>_<random><ext>".
func ObjectName(dir, ext string, now time.Time) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s/%d_%s%s", strings.Trim(dir, "/"), now.UnixMilli(), hex.EncodeToString(b[:]), ext)
}

// PutImage validates an upload and stores it under dir, returning its public
// URL. size is the declared length; limit <= 0 means MaxImageBytes.
func PutImage(ctx context.Context, disk Disk, dir string, r io.Reader, size, limit int64) (string, error) {
	if limit <= 0 {
		limit = MaxImageBytes
	}
	if size > limit {
		return "", fmt.Errorf("%w (%d bytes, max %d)", ErrTooLarge, size, limit)
	}

	mime, ext, body, err := DetectImage(r)
	if err != nil {
		return "", err
	}

	// Guard against a declared size that understates the stream.
	limited := &io.LimitedReader{R: body, N: limit + 1}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, limited); err != nil {
		return "", fmt.Errorf("storage: read upload: %w", err)
	}
	if int64(buf.Len()) > limit {
		return "", fmt.Errorf("%w (max %d bytes)", ErrTooLarge, limit)
	}

	name := ObjectName(dir, ext, time.Now())
	if err := disk.Put(ctx, name, &buf, int64(buf.Len()), mime); err != nil {
		return "", err
	}
	return disk.URL(name), nil
}
