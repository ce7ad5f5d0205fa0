// Package cover uploads article cover images to an S3-compatible bucket and
// records the resulting reference on the article.
package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/draftflow/core/internal/config"
	"github.com/draftflow/core/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUploadBytes = 10 << 20

var (
	ErrDisabled        = errors.New("cover storage is disabled")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds size limit")
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type Service struct {
	db     *gorm.DB
	opts   config.S3Options
	client *s3.Client
	logger *zap.Logger
}

func NewService(db *gorm.DB, opts config.S3Options, logger *zap.Logger) *Service {
	s := &Service{db: db, opts: opts, logger: logger.Named("cover")}
	if !opts.Enabled() {
		return s
	}

	clientOpts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		UsePathStyle: opts.PathStyleAccess,
	}
	if clientOpts.Region == "" {
		clientOpts.Region = "auto"
	}
	if opts.Endpoint != "" {
		clientOpts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	s.client = s3.New(clientOpts)
	return s
}

// Upload stores the image in the bucket and persists the cover reference on
// the article.
func (s *Service) Upload(ctx context.Context, article *models.ArticleModel, file *multipart.FileHeader) (*models.CoverImage, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}
	if file.Size > maxUploadBytes {
		return nil, ErrTooLarge
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, ErrTooLarge
	}

	width, height := imageDims(data)

	key := fmt.Sprintf("covers/%s/%s%s", article.ID, uuid.New().String(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	cover := models.CoverImage{
		Src:    s.publicURL(key),
		Width:  width,
		Height: height,
		Type:   contentType,
	}
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", article.ID).
		Update("cover", cover).Error; err != nil {
		return nil, err
	}
	s.logger.Info("cover uploaded", zap.String("article", article.ID), zap.String("key", key))
	return &cover, nil
}

func (s *Service) publicURL(key string) string {
	if s.opts.CustomDomain != "" {
		return strings.TrimRight(s.opts.CustomDomain, "/") + "/" + key
	}
	endpoint := strings.TrimRight(s.opts.Endpoint, "/")
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
	}
	if s.opts.PathStyleAccess {
		return fmt.Sprintf("%s/%s/%s", endpoint, s.opts.Bucket, key)
	}
	scheme, host, found := strings.Cut(endpoint, "://")
	if !found {
		return fmt.Sprintf("%s/%s/%s", endpoint, s.opts.Bucket, key)
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, s.opts.Bucket, host, key)
}

// imageDims decodes only the header; webp and unknown formats report zero.
func imageDims(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
