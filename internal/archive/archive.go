// Package archive stores original resume uploads in an S3-compatible bucket (AWS S3 or Cloudflare R2).
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested object does not exist
var ErrNotFound = errors.New("archived object not found")

// Options configures the bucket connection
type Options struct {
	Bucket string
	// Prefix is prepended to every key, e.g. "uploads/"
	Prefix string
	// Endpoint overrides the service endpoint, e.g. "https://<account>.r2.cloudflarestorage.com"
	Endpoint string
	Region   string
	// AccessKey and SecretKey are optional; the default credential chain is used when empty.
	AccessKey string
	SecretKey string
}

// objectAPI is the subset of *s3.Client used by Store
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads and writes archived uploads
type Store struct {
	client objectAPI
	bucket string
	prefix string
}

// New builds a Store from the default AWS configuration chain plus opts
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newStore(client, opts.Bucket, opts.Prefix), nil
}

func newStore(client objectAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an upload: <prefix><id>/<base filename>
func (s *Store) Key(id uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	return s.prefix + id.String() + "/" + name
}

// Put uploads the original file bytes for a stored resume and returns the object key
func (s *Store) Put(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (string, error) {
	key := s.Key(id, filename)
	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: map[string]string{"resume-id": id.String()},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("archive: failed to put %s: %w", key, err)
	}
	return key, nil
}

// Get downloads an archived object
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("archive: failed to get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to read %s: %w", key, err)
	}
	return data, nil
}

// ContentType maps a document format to its MIME type
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt", ".text", ".md":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
