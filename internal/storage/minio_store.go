// Package storage provides optional S3-compatible archival of uploaded
// snapshots: every frame the upload sink receives from the controller,
// keyed by upload token and timestamp.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

// SnapshotArchive is the capability the upload server needs; MinioStore
// is the only implementation, but the interface lets the upload server
// stay agnostic of whether archival is configured at all.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type MinioStore struct {
	client  *minio.Client
	bucket  string
	prefix  string
	baseURL *url.URL
	useSSL  bool
	log     *logx.Logger
}

// NewMinioStoreFromEnv builds a MinioStore from MINIO_* environment
// variables, or returns (nil, nil) if archival isn't configured
// (MINIO_ACCESS_KEY/MINIO_SECRET_KEY absent) — callers treat a nil store
// as "archival disabled" rather than an error.
func NewMinioStoreFromEnv(log *logx.Logger) (*MinioStore, error) {
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint := getenv("MINIO_ENDPOINT", "localhost:9000")
	bucket := getenv("MINIO_BUCKET", "unifi-cam-snapshots")
	prefix := getenv("MINIO_PREFIX", "")
	useSSL := getenv("MINIO_USE_SSL", "false") == "true"
	base := getenv("MINIO_PUBLIC_BASE_URL", "")
	publicRead := getenv("MINIO_PUBLIC_READ", "false") == "true"

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := cli.BucketExists(ctx, bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("storage: create/verify bucket %s: %w", bucket, err)
		}
	}

	if publicRead {
		resource := fmt.Sprintf("arn:aws:s3:::%s/*", bucket)
		cleanPrefix := strings.Trim(prefix, "/")
		if cleanPrefix != "" {
			resource = fmt.Sprintf("arn:aws:s3:::%s/%s/*", bucket, cleanPrefix)
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["%s"]}]}`, resource)
		if err := cli.SetBucketPolicy(ctx, bucket, policy); err != nil {
			return nil, fmt.Errorf("storage: set public bucket policy on %s: %w", bucket, err)
		}
	}

	var u *url.URL
	if base != "" {
		u, err = url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("storage: invalid MINIO_PUBLIC_BASE_URL: %w", err)
		}
	}

	log.Infof("connected to minio endpoint %s, bucket=%s", endpoint, bucket)

	return &MinioStore{
		client:  cli,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: u,
		useSSL:  useSSL,
		log:     log,
	}, nil
}

func (s *MinioStore) SaveSnapshot(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := joinObjectKey(s.prefix, key)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("storage: put object: %w", err)
	}

	if s.baseURL != nil {
		u := *s.baseURL
		if u.Path == "" || u.Path == "/" {
			u.Path = "/" + objectKey
		} else {
			u.Path = fmt.Sprintf("%s/%s", strings.TrimSuffix(u.Path, "/"), objectKey)
		}
		return u.String(), nil
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, objectKey), nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func joinObjectKey(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimPrefix(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
