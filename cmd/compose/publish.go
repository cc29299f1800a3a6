package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aem-design/compose/internal/build"
	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/publish"
)

func publishCmd() *cobra.Command {
	var (
		bucket   string
		prefix   string
		region   string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the composed configuration to S3",
		Long: `Upload the last composed configuration and its manifest to S3.

Objects are stored under <prefix>/<project>/<hash>/ and copied to
<prefix>/<project>/latest/. Run "compose build" first.

Credentials come from the default AWS credential chain.

Examples:
  compose publish --bucket=frontend-configs
  compose publish --bucket=frontend-configs --prefix=site --region=eu-west-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}
			if region != "" {
				cfg.Publish.Region = region
			}
			if endpoint != "" {
				cfg.Publish.Endpoint = endpoint
			}
			return runPublish(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from compose.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from compose.json)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from the AWS configuration)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "URL of an S3-compatible service")

	return cmd
}

func runPublish(cmd *cobra.Command, cfg *config.Config) error {
	artifact, err := loadArtifact(cfg.OutputPath())
	if err != nil {
		return err
	}

	p, err := publish.NewFromConfig(cmd.Context(), cfg.Publish, nil)
	if err != nil {
		return err
	}

	keys, err := p.Publish(cmd.Context(), artifact)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, key := range keys {
		info(out, "s3://%s/%s", cfg.Publish.Bucket, key)
	}
	success(out, "Published %s (%s)", artifact.Project, shortHash(artifact.Hash))
	return nil
}

// loadArtifact reads the manifest written by build from outputDir.
func loadArtifact(outputDir string) (publish.Artifact, error) {
	manifestPath := filepath.Join(outputDir, build.ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return publish.Artifact{}, errors.New("E230").
			WithDetail(fmt.Sprintf("No manifest at %s", manifestPath)).
			WithSuggestion("Run 'compose build' before publishing").
			Wrap(err)
	}

	var manifest build.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return publish.Artifact{}, errors.New("E230").
			WithDetail("Invalid manifest " + manifestPath).
			Wrap(err)
	}

	return publish.Artifact{
		Project: manifest.Project,
		Hash:    manifest.Hash,
		Files: []string{
			filepath.Join(outputDir, manifest.Config),
			manifestPath,
		},
	}, nil
}
