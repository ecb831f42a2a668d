// Package media turns uploaded image payloads into durable, URL-addressable
// objects: decode, normalize to a 600x600 PNG, store under a random key.
package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/SamuelFlet/hpdb/internal/storage"
)

// Folder is the logical prefix an object is stored under.
type Folder string

const (
	FolderListings Folder = "Listings"
	FolderProducts Folder = "Products"
)

const (
	imageSize = 600
	keyLength = 20
)

// Pipeline ingests raw image buffers and produces public URLs. Every step
// can fail independently; any failure aborts the whole ingestion.
type Pipeline struct {
	store  storage.Service
	bucket string
	logger *logrus.Logger
}

func NewPipeline(store storage.Service, bucket string, logger *logrus.Logger) *Pipeline {
	return &Pipeline{store: store, bucket: bucket, logger: logger}
}

// Ingest decodes data as a raster image, re-encodes it as a 600x600 PNG,
// uploads it under folder with a random alphabetic key and returns the
// public URL of the stored object.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, folder Folder) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("ingest: empty image payload")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ingest: decode image: %w", err)
	}

	resized := imaging.Fill(img, imageSize, imageSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return "", fmt.Errorf("ingest: encode png: %w", err)
	}

	size := buf.Len()
	key := fmt.Sprintf("%s/%s.png", folder, randomKey(keyLength))
	if err := p.store.Put(ctx, p.bucket, key, &buf, "image/png"); err != nil {
		return "", fmt.Errorf("ingest: %w", err)
	}

	url := p.store.ObjectURL(p.bucket, key)
	p.logger.WithFields(logrus.Fields{"key": key, "bytes": size}).Info("stored image")
	return url, nil
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomKey(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf)
}
