package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultURLExpiry = 15 * time.Minute

// S3Options conveys upload destination metadata.
type S3Options struct {
	Bucket       string
	KeyPrefix    string
	PublicPrefix string
	URLExpiry    time.Duration
}

// S3Service stores article images in Amazon S3 (or compatible APIs).
type S3Service struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	opts      S3Options
}

func NewS3Service(client *s3.Client, opts S3Options) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = defaultURLExpiry
	}
	return &S3Service{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		opts:      opts,
	}, nil
}

func (s *S3Service) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	stored := joinPublic(s.opts.PublicPrefix, path.Base(name))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(stored)),
		Body:   body,
		ACL:    types.ObjectCannedACLPrivate,
	}
	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return stored, nil
}

func (s *S3Service) Remove(ctx context.Context, storedPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(storedPath)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", storedPath, err)
	}
	return nil
}

// URL returns a time limited presigned GET URL for the stored image.
func (s *S3Service) URL(ctx context.Context, storedPath string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(storedPath)),
	}, s3.WithPresignExpires(s.opts.URLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", storedPath, err)
	}
	return req.URL, nil
}

func (s *S3Service) objectKey(storedPath string) string {
	return joinPublic(s.opts.KeyPrefix, strings.TrimPrefix(storedPath, "/"))
}

var _ Service = (*S3Service)(nil)
