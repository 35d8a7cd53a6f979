package msgstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/annedfinds/storefront-notify/internal/config"
)

const rfc822ContentType = "message/rfc822"

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store archives messages in an S3-compatible bucket.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store wraps an existing client.
func NewS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromConfig builds an S3 client from the default AWS credential
// chain. A custom endpoint (MinIO, R2) switches to path-style addressing.
func NewS3StoreFromConfig(cfg config.ArchiveConfig) (*S3Store, error) {
	ctx := context.Background()

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("msgstore: load aws config: %w", err)
	}

	var s3OptFns []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		endpoint := cfg.S3Endpoint
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, s3OptFns...),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

func (s *S3Store) key(messageID string) (string, error) {
	name, err := objectName(messageID)
	if err != nil {
		return "", err
	}
	return s.prefix + name, nil
}

// Put uploads data as message/rfc822.
func (s *S3Store) Put(ctx context.Context, messageID string, data []byte) error {
	k, err := s.key(messageID)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(rfc822ContentType),
	})
	if err != nil {
		return fmt.Errorf("msgstore: s3 put: %w", err)
	}
	return nil
}

// Get returns ErrNotFound when the object does not exist.
func (s *S3Store) Get(ctx context.Context, messageID string) ([]byte, error) {
	k, err := s.key(messageID)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("msgstore: s3 get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("msgstore: s3 read body: %w", err)
	}
	return data, nil
}
