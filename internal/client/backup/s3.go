package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no bucket is configured.
var ErrNotConfigured = errors.New("backup storage is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectAPI is the part of *s3.Client the exporter uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config locates the backup bucket. BaseEndpoint is set for MinIO and
// other S3-compatible servers; empty means AWS.
type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Exporter writes and reads backups in one bucket.
type S3Exporter struct {
	cfg Config

	once      sync.Once
	client    objectAPI
	clientErr error

	now   func() time.Time
	newID func() string
}

// NewS3Exporter returns an exporter for cfg. The S3 client is created on
// first use.
func NewS3Exporter(cfg Config) *S3Exporter {
	return &S3Exporter{cfg: cfg, now: time.Now, newID: uuid.NewString}
}

func (e *S3Exporter) getClient(ctx context.Context) (objectAPI, error) {
	if e.cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	e.once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(e.cfg.Region)}
		if e.cfg.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(e.cfg.AccessKey, e.cfg.SecretKey, "")))
		}

		awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
		if err != nil {
			e.clientErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		e.client = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
			if e.cfg.BaseEndpoint != "" {
				o.BaseEndpoint = aws.String(e.cfg.BaseEndpoint)
				o.UsePathStyle = true
			}
		})
	})
	return e.client, e.clientErr
}

// ObjectKey returns the key a backup created at t is stored under.
func ObjectKey(t time.Time, id string) string {
	t = t.UTC()
	return fmt.Sprintf("backups/%04d/%02d/%02d/%s.json", t.Year(), int(t.Month()), t.Day(), id)
}

// Export uploads the account records and returns the object key.
func (e *S3Exporter) Export(ctx context.Context, list []models.Account) (string, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return "", err
	}

	now := e.now()
	body, err := encode(list, now)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	key := ObjectKey(now, e.newID())
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Import downloads and decodes the backup stored under key.
func (e *S3Exporter) Import(ctx context.Context, key string) ([]models.Account, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return decode(data)
}
