// Package evidence stores claim evidence in S3-compatible object storage,
// addressed by the SHA-256 content hash that is anchored on the ledger.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/config"
)

// Store persists and verifies claim evidence blobs
type Store struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewStore connects to the object store and ensures the evidence bucket exists
func NewStore(cfg *config.EvidenceConfig, logger *zap.Logger) (*Store, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("error creating bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("created evidence bucket", zap.String("bucket", s.bucket))
	}
	return nil
}

// Put stores an evidence blob under its content hash and returns the hash.
// Storing the same content twice is a no-op at the object level.
func (s *Store) Put(ctx context.Context, data []byte, contentType string) (values.EvidenceHash, error) {
	hash, err := values.ComputeEvidenceHash(data)
	if err != nil {
		return values.EvidenceHash{}, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucket, hash.String(), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return values.EvidenceHash{}, domainErrors.NewClaimError("EVIDENCE_STORE_FAILED",
			"failed to store claim evidence").WithCause(err)
	}

	s.logger.Info("evidence stored",
		zap.String("hash", hash.String()),
		zap.Int("size", len(data)))
	return hash, nil
}

// Exists reports whether evidence with the given content hash is stored
func (s *Store) Exists(ctx context.Context, hash values.EvidenceHash) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, hash.String(), minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("error checking evidence existence: %w", err)
	}
	return true, nil
}

// Get retrieves an evidence blob and verifies it still matches its hash
func (s *Store) Get(ctx context.Context, hash values.EvidenceHash) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, hash.String(), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence %s: %w", hash, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil, domainErrors.NewNotFoundError("evidence")
		}
		return nil, fmt.Errorf("failed to read evidence %s: %w", hash, err)
	}

	computed, err := values.ComputeEvidenceHash(data)
	if err != nil {
		return nil, err
	}
	if !computed.Equal(hash) {
		return nil, domainErrors.NewClaimError("EVIDENCE_CORRUPTED",
			"stored evidence does not match its content hash")
	}

	return data, nil
}

// PresignedURL generates a temporary download link for stored evidence
func (s *Store) PresignedURL(ctx context.Context, hash values.EvidenceHash, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, hash.String(), expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign evidence %s: %w", hash, err)
	}
	return url.String(), nil
}
