package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	bucket      string
	key         string
	contentType string
	data        []byte
	puts        int
	err         error
}

func (f *fakeStorage) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.bucket = bucket
	f.key = key
	f.contentType = contentType
	f.data = data
	f.puts++
	return nil
}

func (f *fakeStorage) ObjectURL(bucket, key string) string {
	return "https://s3.example.com/" + bucket + "/" + key
}

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestIngestProducesSquarePNG(t *testing.T) {
	store := &fakeStorage{}
	p := NewPipeline(store, "hpdb", quietLogger())

	url, err := p.Ingest(context.Background(), testImage(t, 800, 400), FolderListings)
	require.NoError(t, err)

	require.Equal(t, 1, store.puts)
	assert.Equal(t, "hpdb", store.bucket)
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, "https://s3.example.com/hpdb/"+store.key, url)

	stored, err := png.Decode(bytes.NewReader(store.data))
	require.NoError(t, err)
	bounds := stored.Bounds()
	assert.Equal(t, 600, bounds.Dx())
	assert.Equal(t, 600, bounds.Dy())
}

func TestIngestKeyFormat(t *testing.T) {
	store := &fakeStorage{}
	p := NewPipeline(store, "hpdb", quietLogger())

	_, err := p.Ingest(context.Background(), testImage(t, 10, 10), FolderProducts)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(store.key, "Products/"), "key %q", store.key)
	require.True(t, strings.HasSuffix(store.key, ".png"), "key %q", store.key)

	token := strings.TrimSuffix(strings.TrimPrefix(store.key, "Products/"), ".png")
	assert.Len(t, token, keyLength)
	for _, r := range token {
		assert.Contains(t, keyAlphabet, string(r))
	}
}

func TestIngestKeysAreUnique(t *testing.T) {
	store := &fakeStorage{}
	p := NewPipeline(store, "hpdb", quietLogger())

	img := testImage(t, 10, 10)
	_, err := p.Ingest(context.Background(), img, FolderListings)
	require.NoError(t, err)
	first := store.key

	_, err = p.Ingest(context.Background(), img, FolderListings)
	require.NoError(t, err)
	assert.NotEqual(t, first, store.key)
}

func TestIngestRejectsUndecodableData(t *testing.T) {
	store := &fakeStorage{}
	p := NewPipeline(store, "hpdb", quietLogger())

	_, err := p.Ingest(context.Background(), []byte("not an image"), FolderListings)
	require.Error(t, err)
	assert.Zero(t, store.puts)
}

func TestIngestRejectsEmptyPayload(t *testing.T) {
	store := &fakeStorage{}
	p := NewPipeline(store, "hpdb", quietLogger())

	_, err := p.Ingest(context.Background(), nil, FolderListings)
	require.Error(t, err)
	assert.Zero(t, store.puts)
}

func TestIngestPropagatesUploadFailure(t *testing.T) {
	store := &fakeStorage{err: io.ErrUnexpectedEOF}
	p := NewPipeline(store, "hpdb", quietLogger())

	_, err := p.Ingest(context.Background(), testImage(t, 10, 10), FolderListings)
	require.Error(t, err)
}
