package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal PNG header followed by padding.
func pngBytes(n int) []byte {
	sig := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	if n < len(sig) {
		n = len(sig)
	}
	return append(sig, bytes.Repeat([]byte{0}, n-len(sig))...)
}

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	d, err := NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)
	return d
}

func TestLocal_PutGetDelete(t *testing.T) {
	d := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "products/a.png", bytes.NewReader([]byte("img")), 3, "image/png"))
	assert.True(t, d.Exists(ctx, "products/a.png"))
	assert.Equal(t, "http://localhost:8080/storage/products/a.png", d.URL("products/a.png"))

	rc, err := d.Get(ctx, "products/a.png")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "img", string(got))

	require.NoError(t, d.Delete(ctx, "products/a.png"))
	require.NoError(t, d.Delete(ctx, "products/a.png"), "deleting twice is fine")

	_, err = d.Get(ctx, "products/a.png")
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestLocal_PathCannotEscapeRoot(t *testing.T) {
	d := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "../../escape.png", strings.NewReader("x"), 1, ""))
	assert.True(t, d.Exists(ctx, "escape.png"))
}

func TestDetectImage(t *testing.T) {
	mime, ext, body, err := DetectImage(bytes.NewReader(pngBytes(5000)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, ".png", ext)

	replayed, _ := io.ReadAll(body)
	assert.Len(t, replayed, 5000)

	_, _, _, err = DetectImage(strings.NewReader("%PDF-1.7 not an image"))
	assert.True(t, errors.Is(err, ErrNotImage))
}

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	name := ObjectName("/settings/", ".jpg", at)

	assert.Regexp(t, regexp.MustCompile(`^settings/1700000000123_[0-9a-f]{8}\.jpg$`), name)
	assert.NotEqual(t, name, ObjectName("settings", ".jpg", at))
}

func TestPutImage(t *testing.T) {
	d := newTestLocal(t)
	ctx := context.Background()

	url, err := PutImage(ctx, d, "products", bytes.NewReader(pngBytes(100)), 100, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/storage/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestPutImage_Rejects(t *testing.T) {
	d := newTestLocal(t)
	ctx := context.Background()

	_, err := PutImage(ctx, d, "products", strings.NewReader("plain text"), 10, 0)
	assert.True(t, errors.Is(err, ErrNotImage))

	_, err = PutImage(ctx, d, "products", bytes.NewReader(pngBytes(10)), MaxImageBytes+1, 0)
	assert.True(t, errors.Is(err, ErrTooLarge), "declared size over the limit")

	_, err = PutImage(ctx, d, "products", bytes.NewReader(pngBytes(2048)), 100, 1024)
	assert.True(t, errors.Is(err, ErrTooLarge), "stream longer than declared")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "s3"})
	assert.Error(t, err, "s3 without a bucket")
}
