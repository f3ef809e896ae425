package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// ProgressFunc receives upload progress as a whole percentage, 0 to 100.
type ProgressFunc func(percent int)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimRight(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("failed to create storage client: supabase url is empty")
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// NewImagePath names a fresh object for a saree image.
func NewImagePath(contentType string) string {
	ext := "jpg"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/gif":
		ext = "gif"
	}
	return fmt.Sprintf("sarees/%s.%s", uuid.New().String(), ext)
}

// UploadImage stores data at storagePath, reporting progress as the body is
// streamed. Upserting makes a retried upload land on the same object.
func (s *StorageClient) UploadImage(ctx context.Context, storagePath string, data []byte, contentType string, progress ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	upsert := true
	body := newProgressReader(bytes.NewReader(data), int64(len(data)), progress)
	_, err := s.client.UploadFile(s.bucket, storagePath, body, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if progress != nil {
		progress(100)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DeleteImage(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) io.Reader {
	if progress == nil || total <= 0 {
		return r
	}
	return &progressReader{r: r, total: total, last: -1, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	// 100 is reported once the server has accepted the upload.
	pct := int(p.read * 99 / p.total)
	if pct != p.last {
		p.last = pct
		p.progress(pct)
	}
	return n, err
}
