package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type CloudflareR2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether every field needed to reach the bucket is set.
func (c CloudflareR2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

// ObjectPutter is the part of the S3 client the archiver uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type r2Archiver struct {
	client        ObjectPutter
	bucketName    string
	publicBaseURL string
}

func NewCloudflareR2Archiver(ctx context.Context, cfg CloudflareR2Config) (Archiver, error) {
	if !cfg.Enabled() {
		return nil, errors.New("invalid Cloudflare R2 configuration: account id, access key, secret and bucket are required")
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return NewR2ArchiverWithClient(client, cfg.BucketName, cfg.PublicBaseURL), nil
}

func NewR2ArchiverWithClient(client ObjectPutter, bucketName, publicBaseURL string) Archiver {
	return &r2Archiver{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: publicBaseURL,
	}
}

func (a *r2Archiver) Archive(ctx context.Context, t *models.Tournament) (*ArchiveResult, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %s for archive: %w", t.ID, err)
	}

	key := ArchiveKey(t)
	result, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object to R2 (key: %s): %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		// S3-compatible APIs return the ETag wrapped in double quotes.
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &ArchiveResult{
		Key:      key,
		Location: a.publicURL(key),
		ETag:     etag,
	}, nil
}

func (a *r2Archiver) publicURL(key string) string {
	if a.publicBaseURL == "" || key == "" {
		return ""
	}

	baseURL, err := url.Parse(a.publicBaseURL)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	pathURL, err := url.Parse(strings.TrimPrefix(key, "/"))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(pathURL).String()
}
