package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"vibemesh/config"
	"vibemesh/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned by Read when no analysis object exists for a track.
var ErrNotFound = errors.New("analysis object not found")

// AnalysisStore wraps a MinIO bucket holding shaped analysis records.
// Objects are keyed by "{trackName}Analysis.json". All access to the
// bucket goes through this type.
type AnalysisStore struct {
	client *minio.Client
	bucket string
}

// NewAnalysisStore connects to MinIO and ensures the bucket exists.
func NewAnalysisStore(cfg *config.Config) (*AnalysisStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created analysis bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &AnalysisStore{client: client, bucket: cfg.MinioBucket}, nil
}

// objectKey maps a track name to its analysis object key.
func objectKey(trackName string) string {
	return trackName + "Analysis.json"
}

// Exists reports whether an analysis object is present for the track.
// A missing object is not an error; any other failure is.
func (s *AnalysisStore) Exists(ctx context.Context, trackName string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey(trackName), minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat analysis object for %s: %w", trackName, err)
	}
	return true, nil
}

// Write stores the serialized analysis record, overwriting unconditionally.
func (s *AnalysisStore) Write(ctx context.Context, trackName string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(trackName),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to write analysis object for %s: %w", trackName, err)
	}
	logger.Debug("Wrote analysis object",
		logger.String("track", trackName),
		logger.Int("bytes", len(data)))
	return nil
}

// Read fetches the serialized analysis record, or ErrNotFound if absent.
func (s *AnalysisStore) Read(ctx context.Context, trackName string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectKey(trackName), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis object for %s: %w", trackName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("analysis for %s: %w", trackName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read analysis object for %s: %w", trackName, err)
	}
	return data, nil
}

// ObjectInfo describes one stored analysis object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BucketStats aggregates bucket contents.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// List returns all analysis objects under the given prefix along with
// aggregate stats. Used by the storage inspection command.
func (s *AnalysisStore) List(ctx context.Context, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("failed to list analysis objects: %w", object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, stats, nil
}

// Bucket returns the bucket name this store operates on.
func (s *AnalysisStore) Bucket() string {
	return s.bucket
}
