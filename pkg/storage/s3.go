package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxThumbnailSize is the maximum allowed thumbnail upload (5MB).
	MaxThumbnailSize = 5 * 1024 * 1024
	// FolderThumbnails is the S3 prefix for thumbnail objects.
	FolderThumbnails = "thumbnails"
)

// AllowedThumbnailTypes maps accepted MIME types to object extensions.
var AllowedThumbnailTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	ThumbnailsBucket string
	PublicBaseURL    string // optional CDN base; empty = bucket URL
}

// S3 stores thumbnail images and hands back public URLs the catalog can
// persist as thumbnail_url.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or environment.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	logger.Info("S3 storage ready", zap.String("bucket", cfg.ThumbnailsBucket), zap.String("region", cfg.Region))
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// UploadThumbnail stores an image under the thumbnails prefix and returns
// its public URL. The object key is server-assigned; origName only
// contributes a fallback extension.
func (s *S3) UploadThumbnail(ctx context.Context, r io.Reader, contentType, origName string) (string, error) {
	ext, ok := AllowedThumbnailTypes[strings.ToLower(contentType)]
	if !ok {
		ext = strings.ToLower(path.Ext(origName))
		if _, known := extContentTypes[ext]; !known {
			return "", fmt.Errorf("unsupported thumbnail type %q", contentType)
		}
		contentType = extContentTypes[ext]
	}

	key := fmt.Sprintf("%s/%s%s", FolderThumbnails, uuid.New().String(), ext)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.ThumbnailsBucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}

	url := s.PublicURL(key)
	s.logger.Debug("thumbnail uploaded", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// PublicURL builds the public URL for an object key.
func (s *S3) PublicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.ThumbnailsBucket, s.cfg.Region, key)
}

var extContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}
