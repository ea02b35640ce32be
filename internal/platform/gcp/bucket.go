package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	DeleteFile(ctx context.Context, key string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	GetObjectAttrs(ctx context.Context, key string) (*ObjectAttrs, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GetPublicURL(key string) string
	GetGSURI(key string) string
	BucketName() string
	Close() error
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
	cdnDomain     string
}

func NewBucketService(log *logger.Logger, bucketName, cdnDomain string) (BucketService, error) {
	if strings.TrimSpace(bucketName) == "" {
		return nil, fmt.Errorf("media bucket name required")
	}
	serviceLog := log.With("service", "BucketService")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info("Object storage initialized", "bucket", bucketName, "cdn_domain", cdnDomain)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucketName,
		cdnDomain:     strings.TrimSpace(cdnDomain),
	}, nil
}

func (bs *bucketService) BucketName() string { return bs.bucketName }

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	o := bs.storageClient.Bucket(bs.bucketName).Object(key)
	if err := o.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bs.bucketName, err)
	}
	return nil
}

// readCloserWithCancel ties the reader's context lifetime to Close().
// Cancelling before the caller reads would hand back an empty stream.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.storageClient.Bucket(bs.bucketName).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) GetObjectAttrs(ctx context.Context, key string) (*ObjectAttrs, error) {
	ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	attrs, err := bs.storageClient.Bucket(bs.bucketName).Object(key).Attrs(ctx2)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GCS object attrs: %w", err)
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

func (bs *bucketService) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := bs.storageClient.Bucket(bs.bucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}

func (bs *bucketService) GetGSURI(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("gs://%s/%s", bs.bucketName, key)
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.storageClient == nil {
		return nil
	}
	return bs.storageClient.Close()
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
