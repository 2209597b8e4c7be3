package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pet-adoption-backend/internal/config"
)

func configWithoutBucket() config.AWSConfig {
	return config.AWSConfig{Region: "eu-west-1"}
}

func TestUploadObjectURL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.AWSConfig
		prefix string
	}{
		{
			name:   "aws virtual host",
			cfg:    config.AWSConfig{Region: "us-east-1", S3Bucket: "media"},
			prefix: "https://media.s3.us-east-1.amazonaws.com/pets/p1/",
		},
		{
			name:   "custom endpoint path style",
			cfg:    config.AWSConfig{Region: "us-east-1", S3Bucket: "media", Endpoint: "http://localhost:9000/"},
			prefix: "http://localhost:9000/media/pets/p1/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presigner := &fakePresigner{}
			uploads := NewUploadService(presigner, tt.cfg)

			upload, err := uploads.PresignPetPhoto(context.Background(), "p1", UploadRequest{ContentType: "image/jpeg"})
			if err != nil {
				t.Fatalf("PresignPetPhoto: %v", err)
			}
			if !strings.HasPrefix(upload.FileURL, tt.prefix) || !strings.HasSuffix(upload.FileURL, ".jpg") {
				t.Errorf("FileURL = %s, want prefix %s", upload.FileURL, tt.prefix)
			}
			if len(presigner.keys) != 1 || !strings.HasPrefix(presigner.keys[0], "pets/p1/") {
				t.Errorf("keys = %v", presigner.keys)
			}
			if !strings.Contains(upload.UploadURL, "expires=5m0s") {
				t.Errorf("expected 5 minute expiry, got %s", upload.UploadURL)
			}
		})
	}
}

func TestAttachmentContentTypes(t *testing.T) {
	uploads := NewUploadService(&fakePresigner{}, config.AWSConfig{Region: "eu-west-1", S3Bucket: "media"})
	ctx := context.Background()

	if _, err := uploads.PresignAttachment(ctx, "c1", UploadRequest{ContentType: "application/pdf"}); err != nil {
		t.Fatalf("pdf attachment: %v", err)
	}
	if _, err := uploads.PresignPetPhoto(ctx, "p1", UploadRequest{ContentType: "application/pdf"}); err == nil {
		t.Fatal("pdf must not be accepted as a pet photo")
	}
}

func TestUploadPresignFailure(t *testing.T) {
	boom := errors.New("signer down")
	uploads := NewUploadService(&fakePresigner{err: boom}, config.AWSConfig{Region: "eu-west-1", S3Bucket: "media"})

	_, err := uploads.PresignUserPhoto(context.Background(), "u1", UploadRequest{ContentType: "image/png"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped signer error, got %v", err)
	}
}
