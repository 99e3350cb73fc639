package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"rigtrack/internal/config"
)

// S3Archive stores snapshots in an S3 bucket under a key prefix:
//
//	<prefix>/snapshots/<storeID>.db
//	<prefix>/snapshots/<storeID>.version
//
// Credentials come from the default AWS chain, or from static keys in the
// config for MinIO-style deployments with a custom endpoint.
type S3Archive struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Archive creates an S3 archive from configuration.
func NewS3Archive(cfg config.ArchiveConfig) (*S3Archive, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   strings.TrimSuffix(cfg.S3Prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (a *S3Archive) snapshotKey(storeID string) string {
	return a.key("snapshots/" + storeID + ".db")
}

func (a *S3Archive) versionKey(storeID string) string {
	return a.key("snapshots/" + storeID + ".version")
}

func (a *S3Archive) key(suffix string) string {
	if a.prefix == "" {
		return suffix
	}
	return a.prefix + "/" + suffix
}

// PutSnapshot uploads a snapshot and its version marker.
// The snapshot is written first; a crash between the two writes leaves the
// version marker behind the data, which only makes the stale check lenient.
func (a *S3Archive) PutSnapshot(storeID string, r io.Reader, size int64, version int64) error {
	ctx := context.Background()

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.snapshotKey(storeID)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}

	versionData := strconv.FormatInt(version, 10)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.versionKey(storeID)),
		Body:   strings.NewReader(versionData),
	})
	if err != nil {
		return fmt.Errorf("uploading version marker: %w", err)
	}

	return nil
}

// GetSnapshot downloads the snapshot for a store and writes it to w.
func (a *S3Archive) GetSnapshot(storeID string, w io.Writer) error {
	out, err := a.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.snapshotKey(storeID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("%w for store: %s", errNoSnapshot, storeID)
		}
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}

	return nil
}

// GetSnapshotVersion returns the snapshot version for a store.
// Returns 0 if no version marker exists.
func (a *S3Archive) GetSnapshotVersion(storeID string) (int64, error) {
	out, err := a.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.versionKey(storeID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return 0, nil
		}
		return 0, fmt.Errorf("downloading version marker: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("reading version marker: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies the bucket is reachable.
func (a *S3Archive) ValidateSetup() error {
	_, err := a.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", a.bucket, err)
	}
	return nil
}

// Compile-time check that S3Archive implements the Archive interface
var _ Archive = (*S3Archive)(nil)
