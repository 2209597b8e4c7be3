package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"pet-adoption-backend/internal/config"
	"pet-adoption-backend/internal/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadExpiry = 5 * time.Minute

// Presigner signs S3 PUT requests. *s3.PresignClient satisfies it.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// NewS3Presigner builds a presign client from the AWS settings. Static
// credentials are used when configured, otherwise the default chain.
func NewS3Presigner(ctx context.Context, cfg config.AWSConfig) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// UploadRequest asks for a pre-signed upload URL
type UploadRequest struct {
	Filename    string `json:"filename" validate:"max=255"`
	ContentType string `json:"contentType" validate:"required"`
}

// Upload is a pre-signed PUT target and the URL the object will be served from
type Upload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var attachmentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// UploadService issues pre-signed S3 upload URLs
type UploadService struct {
	presigner Presigner
	bucket    string
	region    string
	endpoint  string
}

// NewUploadService creates a new upload service. A nil presigner or an
// empty bucket disables uploads.
func NewUploadService(presigner Presigner, cfg config.AWSConfig) *UploadService {
	return &UploadService{
		presigner: presigner,
		bucket:    cfg.S3Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
	}
}

// Enabled reports whether uploads can be issued
func (s *UploadService) Enabled() bool {
	return s != nil && s.presigner != nil && s.bucket != ""
}

// PresignUserPhoto issues an upload URL for a profile photo
func (s *UploadService) PresignUserPhoto(ctx context.Context, userID string, req UploadRequest) (*Upload, error) {
	return s.presign(ctx, path.Join("users", userID), req, imageTypes)
}

// PresignPetPhoto issues an upload URL for a pet listing photo
func (s *UploadService) PresignPetPhoto(ctx context.Context, petID string, req UploadRequest) (*Upload, error) {
	return s.presign(ctx, path.Join("pets", petID), req, imageTypes)
}

// PresignAttachment issues an upload URL for a message attachment
func (s *UploadService) PresignAttachment(ctx context.Context, conversationID string, req UploadRequest) (*Upload, error) {
	return s.presign(ctx, path.Join("conversations", conversationID), req, attachmentTypes)
}

func (s *UploadService) presign(ctx context.Context, prefix string, req UploadRequest, allowed map[string]string) (*Upload, error) {
	if !s.Enabled() {
		return nil, fail(ErrUploadsDisabled, "uploads are not configured")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ext, ok := allowed[req.ContentType]
	if !ok {
		return nil, validation.Fail("contentType", "oneof")
	}

	// {prefix}/{object_id}{ext}
	key := prefix + "/" + uuid.New().String() + ext

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &Upload{
		UploadURL: request.URL,
		FileURL:   s.objectURL(key),
		ExpiresIn: int(uploadExpiry / time.Second),
	}, nil
}

func (s *UploadService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
