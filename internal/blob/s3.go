// Package blob stores memory images: opaque keys in private, owner-scoped
// object storage, plus a resolver for locally bundled demo assets.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dgraph-io/ristretto"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/logging"
)

// presignExpiry bounds how long a resolved image URL stays valid.
const presignExpiry = 15 * time.Minute

// urlCacheTTL keeps cached URLs comfortably shorter-lived than the
// presign expiry so a cached URL is never handed out already stale.
const urlCacheTTL = 10 * time.Minute

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config carries the object-storage settings.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string // optional, for S3-compatible backends
	AccessKey    string
	SecretKey    string
}

// S3Store keeps image blobs under private per-owner prefixes and resolves
// them to time-limited presigned URLs. Resolved URLs are cached with a TTL
// below the presign expiry.
type S3Store struct {
	api       s3API
	presigner presignAPI
	bucket    string
	cache     *ristretto.Cache
	log       logging.Logger
}

// NewS3Store builds a store over the real S3 client.
func NewS3Store(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
	})

	return newS3Store(client, s3.NewPresignClient(client), cfg.Bucket, log)
}

func newS3Store(api s3API, presigner presignAPI, bucket string, log logging.Logger) (*S3Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     1 << 10, // a few hundred URLs at most
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("url cache: %w", err)
	}

	return &S3Store{
		api:       api,
		presigner: presigner,
		bucket:    bucket,
		cache:     cache,
		log:       log.With("component", "blob"),
	}, nil
}

// objectKey applies the private access level: every object lives under its
// owner's prefix, so one owner can never address another's blobs.
func objectKey(owner, name string) string {
	return fmt.Sprintf("private/%s/%s", owner, name)
}

// Upload stores data under the owner's private prefix.
func (s *S3Store) Upload(ctx context.Context, owner, name string, data []byte) error {
	key := objectKey(owner, name)

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: uploading %s: %v", common.ErrorTransport, key, err)
	}

	s.log.Debug(ctx, "image uploaded", "key", key, "bytes", len(data))
	return nil
}

// Remove deletes the object. Missing objects are not an error.
func (s *S3Store) Remove(ctx context.Context, owner, name string) error {
	key := objectKey(owner, name)

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", common.ErrorTransport, key, err)
	}

	s.cache.Del(key)
	s.log.Debug(ctx, "image deleted", "key", key)
	return nil
}

// URL resolves the object to a time-limited presigned URL. An absent object
// resolves to an empty URL with no error: a missing image is a valid,
// placeholder-displayable state.
func (s *S3Store) URL(ctx context.Context, owner, name string) (string, error) {
	key := objectKey(owner, name)

	if cached, ok := s.cache.Get(key); ok {
		if url, ok := cached.(string); ok {
			return url, nil
		}
	}

	if _, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			s.log.Debug(ctx, "image absent", "key", key)
			return "", nil
		}
		return "", fmt.Errorf("%w: checking %s: %v", common.ErrorTransport, key, err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("%w: presigning %s: %v", common.ErrorTransport, key, err)
	}

	s.cache.SetWithTTL(key, req.URL, 1, urlCacheTTL)
	return req.URL, nil
}
