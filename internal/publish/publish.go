// Package publish uploads composed configurations to S3.
package publish

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
)

// PutObjectAPI is the part of the S3 client the publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Artifact is one composed configuration on disk.
type Artifact struct {
	// Project is the project the configuration was composed for.
	Project string

	// Hash identifies the configuration. Objects are stored under it.
	Hash string

	// Files are uploaded by base name.
	Files []string
}

// Publisher uploads artifacts to one bucket.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates a publisher writing to bucket under prefix.
func New(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// NewFromConfig creates a publisher using the AWS default credential chain.
func NewFromConfig(ctx context.Context, cfg config.PublishConfig, logger *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("E230").
			WithDetail("No bucket configured").
			WithSuggestion(`Set "publish": {"bucket": "..."} in compose.json or pass --bucket`)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E230").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// Key returns the object key for file within artifact a.
func (p *Publisher) Key(a Artifact, file string) string {
	return path.Join(p.prefix, a.Project, a.Hash, filepath.Base(file))
}

// LatestKey returns the key that always holds the most recent upload of file.
func (p *Publisher) LatestKey(a Artifact, file string) string {
	return path.Join(p.prefix, a.Project, "latest", filepath.Base(file))
}

// Publish uploads every file of a twice: under its hash and as latest.
// It returns the hashed keys in file order.
func (p *Publisher) Publish(ctx context.Context, a Artifact) ([]string, error) {
	if p.bucket == "" {
		return nil, errors.New("E230").WithDetail("No bucket configured")
	}

	keys := make([]string, 0, len(a.Files))
	for _, file := range a.Files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.New("E230").WithDetail("Failed to read " + file).Wrap(err)
		}

		key := p.Key(a, file)
		for _, k := range []string{key, p.LatestKey(a, file)} {
			if err := p.put(ctx, k, data, a); err != nil {
				return nil, err
			}
		}
		p.logger.Info("published", "bucket", p.bucket, "key", key, "bytes", len(data))
		keys = append(keys, key)
	}
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key string, data []byte, a Artifact) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"project":      a.Project,
			"config-hash":  a.Hash,
			"publish-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("E230").
			WithDetail("s3://" + p.bucket + "/" + key).
			Wrap(err)
	}
	return nil
}
