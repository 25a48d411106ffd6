package site

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/drew/stratsite/internal/config"
)

// Sink receives generated files
type Sink interface {
	// Write stores data at the slash-separated path, replacing any previous content
	Write(ctx context.Context, path string, data []byte) error
	// Remote reports whether the sink lives outside the scanned tree
	Remote() bool
}

// NewSink builds the sink selected by the publish configuration
func NewSink(cfg config.Config) (Sink, error) {
	switch cfg.Publish.Type {
	case "", config.PublishLocal:
		return NewLocalSink(cfg.Site.Root)
	case config.PublishS3:
		return NewS3Sink(cfg.Publish.S3)
	default:
		return nil, fmt.Errorf("unknown publish type %q", cfg.Publish.Type)
	}
}

// LocalSink writes files under a base directory
type LocalSink struct {
	basePath string
}

// NewLocalSink creates a sink rooted at basePath, creating it if needed
func NewLocalSink(basePath string) (*LocalSink, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	return &LocalSink{basePath: basePath}, nil
}

func (s *LocalSink) fullPath(p string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(p))
}

func (s *LocalSink) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.fullPath(p)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0644)
}

func (s *LocalSink) Remote() bool { return false }

// S3Sink uploads files to an S3-compatible bucket
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink creates an S3 client from static credentials. Without keys the
// requests are sent unsigned.
func NewS3Sink(cfg config.S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
		// S3-compatible services often reject the default trailing checksums
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true // MinIO and most S3-compatible services
	}

	return &S3Sink{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Sink) key(p string) string {
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

func (s *S3Sink) Write(ctx context.Context, p string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(p)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(p)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key(p), err)
	}
	return nil
}

func (s *S3Sink) Remote() bool { return true }

func contentType(p string) string {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
