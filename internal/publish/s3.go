package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// objectPutter is the slice of the S3 client the publisher needs.
// Narrowed to an interface so tests can substitute a fake.
type objectPutter interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads produced artifacts to an S3 bucket/prefix so a release
// run can feed a distribution mirror directly.
type Publisher struct {
	// client performs the uploads.
	client objectPutter
	// bucket is the destination bucket name.
	bucket string
	// prefix is the key prefix artifacts are stored under.
	prefix string
}

// ParseDestination splits an s3://bucket/prefix URL.
func ParseDestination(dest string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(dest, "s3://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("publish destination must look like s3://bucket/prefix, got %q", dest)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("publish destination %q has no bucket", dest)
	}

	return bucket, strings.Trim(prefix, "/"), nil
}

// NewPublisher builds a publisher for an s3://bucket/prefix destination
// using the ambient AWS credential chain.
func NewPublisher(ctx context.Context, dest string) (*Publisher, error) {
	bucket, prefix, err := ParseDestination(dest)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Publisher{client: s3.NewFromConfig(awsCfg), bucket: bucket, prefix: prefix}, nil
}

// Upload pushes one artifact file, keyed by its base name under the prefix.
func (p *Publisher) Upload(ctx context.Context, artifactPath string) error {
	file, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	key := path.Join(p.prefix, filepath.Base(artifactPath))

	logger.InfoKV(ctx, "Uploading artifact", "bucket", p.bucket, "key", key, "bytes", stat.Size())

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType(artifactPath)),
	})

	return err
}

// contentType guesses a MIME type from the artifact extension.
func contentType(artifactPath string) string {
	switch {
	case strings.HasSuffix(artifactPath, ".zip"):
		return "application/zip"
	case strings.HasSuffix(artifactPath, ".tar.gz"):
		return "application/gzip"
	case strings.HasSuffix(artifactPath, ".tar.xz"):
		return "application/x-xz"
	case strings.HasSuffix(artifactPath, ".deb"):
		return "application/vnd.debian.binary-package"
	case strings.HasSuffix(artifactPath, ".dmg"):
		return "application/x-apple-diskimage"
	default:
		return "application/octet-stream"
	}
}
