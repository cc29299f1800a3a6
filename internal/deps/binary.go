package deps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aem-design/compose/internal/errors"
)

const (
	// DefaultBinDir is the default directory for downloaded tools, relative
	// to the user's home directory.
	DefaultBinDir = ".compose/bin"

	// downloadTimeout bounds a single tool download.
	downloadTimeout = 5 * time.Minute
)

// Binary downloads standalone tool executables described by Tool
// descriptors. Each tool is stored per name and version so upgrades never
// reuse an older binary.
type Binary struct {
	// BinDir is the directory where binaries are stored.
	BinDir string

	// HTTPClient is used for downloads. If nil, a default client is used.
	HTTPClient *http.Client

	// Logger receives download progress. If nil, slog.Default() is used.
	Logger *slog.Logger

	mu sync.Mutex
}

// NewBinary creates a tool installer storing binaries under binDir. An empty
// binDir selects ~/.compose/bin.
func NewBinary(binDir string, logger *slog.Logger) *Binary {
	if binDir == "" {
		binDir = defaultBinDir()
	}
	return &Binary{
		BinDir: binDir,
		Logger: logger,
	}
}

// defaultBinDir returns the default binary directory (~/.compose/bin).
func defaultBinDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultBinDir)
	}
	return filepath.Join(home, DefaultBinDir)
}

// Install downloads every Tool descriptor that is not present yet. Other
// kinds are ignored. A tool that fails to download leaves no file behind.
func (b *Binary) Install(ctx context.Context, deps []Descriptor) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	outcome := Skipped
	for _, d := range deps {
		if d.Kind != Tool {
			continue
		}
		if b.IsInstalled(d) {
			continue
		}
		if err := b.download(ctx, d); err != nil {
			return Skipped, errors.New("E212").
				WithDetail(d.Spec()).
				Wrap(err)
		}
		outcome = Installed
	}
	return outcome, nil
}

// IsInstalled checks if the tool binary exists.
func (b *Binary) IsInstalled(d Descriptor) bool {
	_, err := os.Stat(b.Path(d))
	return err == nil
}

// Path returns the path where the tool binary is stored.
func (b *Binary) Path(d Descriptor) string {
	return filepath.Join(b.BinDir, d.Name, d.Version, assetName(d.Name))
}

// downloadURL returns the URL to download the tool from.
func downloadURL(d Descriptor) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(d.Source, "/"), d.Version, assetName(d.Name))
}

func (b *Binary) download(ctx context.Context, d Descriptor) error {
	if d.Source == "" {
		return fmt.Errorf("tool %s has no download source", d.Name)
	}
	url := downloadURL(d)
	target := b.Path(d)
	logger := b.logger().With("tool", d.Name, "version", d.Version)

	logger.Info("Downloading tool", "url", url)

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := b.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d (URL: %s)", resp.StatusCode, url)
	}

	// Write to a temp file first, then rename.
	tmpPath := target + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to make executable: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to install binary: %w", err)
	}

	logger.Info("Installed tool", "path", target, "size_mb", fmt.Sprintf("%.1f", float64(written)/1024/1024))
	return nil
}

func (b *Binary) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
