package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
	"github.com/taskroom/taskroom/internal/config"
)

// ErrNotConfigured is returned by NewStore when no bucket is configured.
var ErrNotConfigured = errors.New("object storage is not configured")

// Store writes JSON exports to one S3 bucket and hands out temporary links to them.
type Store struct {
	bucket    string
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

func NewStore(ctx context.Context, c config.S3Cfg) (*Store, error) {
	if strings.TrimSpace(c.Bucket) == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(c.Region)}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	acfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(acfg, func(o *s3.Options) {
		if ep := endpointURL(c.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		o.UsePathStyle = c.UsePathStyle
	})
	return &Store{
		bucket:    c.Bucket,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}, nil
}

// endpointURL accepts host[:port] as well as full URLs (minio, R2).
func endpointURL(raw string) string {
	ep := strings.TrimSpace(raw)
	if ep == "" || strings.Contains(ep, "://") {
		return ep
	}
	return "https://" + ep
}

type UploadedMeta struct {
	Bucket string
	Key    string
	SHA256 string
	SizeB  int64
}

// archiveKey is prefix/<utc timestamp>-<first 12 hex of the digest>.json, so listing a prefix
// returns exports in chronological order.
func archiveKey(prefix string, at time.Time, sum string) string {
	return fmt.Sprintf("%s/%s-%s.json", strings.TrimSuffix(prefix, "/"), at.UTC().Format("20060102T150405Z"), sum[:12])
}

func (s *Store) UploadJSON(ctx context.Context, keyPrefix string, data interface{}) (*UploadedMeta, error) {
	body, err := sonic.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	digest := sha256.Sum256(body)
	sum := hex.EncodeToString(digest[:])
	key := archiveKey(keyPrefix, time.Now(), sum)

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{"sha256": sum},
	}); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	return &UploadedMeta{Bucket: s.bucket, Key: key, SHA256: sum, SizeB: int64(len(body))}, nil
}

func (s *Store) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("presign: empty key")
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
