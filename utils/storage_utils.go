package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"fakhiuBack/internal/models"
)

// ImageUploader moves data-URL images out of request bodies into an S3
// compatible bucket. Credentials come from the default AWS chain.
type ImageUploader struct {
	client   s3iface.S3API
	bucket   string
	endpoint string
	region   string
}

// NewImageUploader returns nil when no bucket is configured.
func NewImageUploader(bucket, region, endpoint string) (*ImageUploader, error) {
	if bucket == "" {
		return nil, nil
	}
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return &ImageUploader{client: s3.New(sess), bucket: bucket, endpoint: endpoint, region: region}, nil
}

// Upload stores a data URL and returns its public URL. Values that are
// not data URLs, including empty ones, are returned unchanged.
func (u *ImageUploader) Upload(ctx context.Context, image, folder string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}
	contentType, data, err := DecodeDataURL(image)
	if err != nil {
		return "", err
	}

	filePath := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), extensionFor(contentType))
	_, err = u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return u.publicURL(filePath), nil
}

func (u *ImageUploader) publicURL(filePath string) string {
	if u.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.endpoint, "/"), u.bucket, filePath)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, filePath)
}

// DecodeDataURL splits "data:<type>;base64,<payload>" into its parts.
func DecodeDataURL(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", nil, models.ErrInvalidImageData
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, models.ErrInvalidImageData
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 || !strings.HasPrefix(contentType, "image/") {
		return "", nil, models.ErrInvalidImageData
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, models.ErrInvalidImageData
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
