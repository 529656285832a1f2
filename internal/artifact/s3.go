package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Delivery uploads batch outputs to S3-compatible object storage.
// Delivery is never fatal to a batch; callers log failures and flag the
// summary instead.
type S3Delivery struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3Config holds object storage connection settings. Endpoint may point
// at any S3-compatible provider; path-style addressing is used whenever
// it is set.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Logger    *zap.Logger
}

// NewS3Delivery creates the delivery adapter.
func NewS3Delivery(cfg S3Config) (*S3Delivery, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3Delivery{
		client: client,
		bucket: cfg.Bucket,
		logger: cfg.Logger,
	}, nil
}

// Upload puts one object and returns its SHA-256 checksum.
func (s *S3Delivery) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	hash := sha256.Sum256(data)
	checksum := hex.EncodeToString(hash[:])

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"checksum": checksum,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to object storage: %w", key, err)
	}

	s.logger.Info("uploaded batch output",
		zap.String("key", key),
		zap.String("checksum", checksum),
		zap.Int("size_bytes", len(data)),
	)
	return checksum, nil
}
