package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ellavondegurechaff/packforge/packforge/config"
)

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	CardRoot string `toml:"cardroot"`
	// Endpoint overrides the DigitalOcean endpoint, e.g. for a local MinIO.
	Endpoint string `toml:"endpoint"`
	// Presign serves time-limited signed URLs for private buckets.
	Presign bool `toml:"presign"`
}

// SpacesService resolves card image keys to URLs on S3-compatible storage.
type SpacesService struct {
	presigner *s3.PresignClient
	bucket    string
	region    string
	endpoint  string
	cardRoot  string
	presign   bool
	expires   time.Duration
}

func NewSpacesService(ctx context.Context, cfg SpacesConfig) (*SpacesService, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("spaces bucket and region are required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load spaces config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &SpacesService{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		cardRoot:  strings.Trim(cfg.CardRoot, "/"),
		presign:   cfg.Presign,
		expires:   config.ImageURLExpiration,
	}, nil
}

func (s *SpacesService) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.cardRoot == "" {
		return key
	}
	return path.Join(s.cardRoot, key)
}

// PublicURL is the virtual-hosted URL of key.
func (s *SpacesService) PublicURL(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, host, s.objectKey(key))
}

// CardImageURL returns absolute URLs unchanged and resolves bucket keys.
// Presigning failures degrade to the public URL.
func (s *SpacesService) CardImageURL(ctx context.Context, key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if !s.presign {
		return s.PublicURL(key)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		slog.Warn("Failed to presign card image",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return s.PublicURL(key)
	}
	return req.URL
}

func (s *SpacesService) GetBucket() string { return s.bucket }

func (s *SpacesService) GetRegion() string { return s.region }
