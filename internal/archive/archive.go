// Package archive stores batch reports with rejected records in MinIO so
// operators can inspect and retry the failed subset.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"cadence_sync_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectStore is the subset of *minio.Client the archive uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Archive writes JSON reports to one bucket.
type Archive struct {
	client objectStore
	bucket string
	now    func() time.Time
}

// Entry describes one archived report.
type Entry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewMinIOArchive connects to MinIO. It fails when no endpoint is configured.
func NewMinIOArchive(cfg config.ArchiveConfig) (*Archive, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newArchive(client, cfg.GetArchiveBucket()), nil
}

func newArchive(client objectStore, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket, now: time.Now}
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (a *Archive) EnsureBucketExists(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// Archive stores report as <company>/<operation>/<timestamp>.json.
func (a *Archive) Archive(ctx context.Context, companyID uuid.UUID, operation string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	key := objectKey(companyID, operation, a.now())
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return nil
}

// List returns the reports of a company, newest first. An empty operation
// lists every operation.
func (a *Archive) List(ctx context.Context, companyID uuid.UUID, operation string) ([]Entry, error) {
	prefix := companyID.String() + "/"
	if operation != "" {
		prefix += operation + "/"
	}

	var entries []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		entries = append(entries, Entry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key > entries[j].Key })
	return entries, nil
}

func objectKey(companyID uuid.UUID, operation string, at time.Time) string {
	op := strings.Trim(strings.ReplaceAll(operation, "/", "_"), " ")
	if op == "" {
		op = "unknown"
	}
	return path.Join(companyID.String(), op, at.UTC().Format("20060102T150405.000000000Z")+".json")
}
