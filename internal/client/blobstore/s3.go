package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Options configures NewS3Store.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the base used by BlobURL. Defaults to Endpoint/Bucket.
	PublicURL string
}

// S3Store is a content-addressed Store over an S3-compatible bucket. The blob
// id is the unpadded base64url SHA-256 of the payload, so identical content
// maps to the same object and is reported as already certified.
type S3Store struct {
	client    s3API
	bucket    string
	publicURL string
	log       logging.Logger
}

// NewS3Store builds an S3Store from static credentials (MinIO style) or, when
// AccessKey is empty, from the default AWS credential chain.
func NewS3Store(ctx context.Context, opts S3Options, log logging.Logger) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return newS3Store(client, opts.Bucket, publicURL, log), nil
}

func newS3Store(client s3API, bucket, publicURL string, log logging.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/"), log: log}
}

// ContentID returns the blob id S3Store assigns to payload.
func ContentID(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (s *S3Store) Upload(ctx context.Context, payload []byte, epochs int) (*UploadResult, error) {
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	id := ContentID(payload)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(id)})
	if err == nil {
		s.log.Debug(ctx, "blob already stored", "blob_id", id)
		return &UploadResult{BlobID: id, ObjectID: id, Cost: "0", EndEpoch: endEpochOf(head.Metadata)}, nil
	}
	if !isS3NotFound(err) {
		return nil, fmt.Errorf("%w: probe blob %s: %w", common.ErrTransfer, id, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(id),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/octet-stream"),
		Metadata:      map[string]string{"epochs": strconv.Itoa(epochs)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload: %w", common.ErrTransfer, err)
	}

	s.log.Debug(ctx, "blob stored", "blob_id", id, "size", len(payload))

	return &UploadResult{
		BlobID:   id,
		ObjectID: id,
		Size:     int64(len(payload)),
		Cost:     "0",
		EndEpoch: int64(epochs),
		Created:  true,
	}, nil
}

func (s *S3Store) Download(ctx context.Context, blobID string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(blobID)})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: blob %s: %w", common.ErrTransfer, blobID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: download blob %s: %w", common.ErrTransfer, blobID, err)
	}
	defer out.Body.Close()

	return readBlob(out.Body, blobID, MaxBlobSize)
}

func (s *S3Store) Exists(ctx context.Context, blobID string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(blobID)})
	if err != nil {
		if !isS3NotFound(err) {
			s.log.Warn(ctx, "blob existence check failed", "blob_id", blobID, "error", err)
		}
		return false
	}
	return true
}

func (s *S3Store) BlobURL(blobID string) string {
	return s.publicURL + "/" + url.PathEscape(blobID)
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func endEpochOf(meta map[string]string) int64 {
	v, err := strconv.ParseInt(meta["epochs"], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
