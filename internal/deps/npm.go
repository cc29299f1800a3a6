package deps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aem-design/compose/internal/errors"
)

// manifestFiles are restored when an install fails.
var manifestFiles = []string{"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml"}

// commandFunc runs a command in dir and returns its combined output.
type commandFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// NPM installs Dev and Runtime packages with a Node.js package manager.
type NPM struct {
	// Dir is the project directory containing package.json.
	Dir string

	// Command is the package manager: "npm" (default), "yarn" or "pnpm".
	Command string

	// Logger receives install progress. If nil, slog.Default() is used.
	Logger *slog.Logger

	lookPath func(string) (string, error)
	run      commandFunc

	mu sync.Mutex
}

// NewNPM creates a package installer for the project in dir.
func NewNPM(dir, command string, logger *slog.Logger) *NPM {
	return &NPM{
		Dir:     dir,
		Command: command,
		Logger:  logger,
	}
}

// Install adds every missing package in one step per kind. On failure the
// package manifests are restored to their previous content.
func (n *NPM) Install(ctx context.Context, deps []Descriptor) (Outcome, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	missing, err := n.Missing(deps)
	if err != nil {
		return Skipped, err
	}
	if len(missing) == 0 {
		return Skipped, nil
	}

	command := n.command()
	if _, err := n.look(command); err != nil {
		return Skipped, errors.New("E211").
			WithSuggestion("Install Node.js from https://nodejs.org").
			Wrap(err)
	}

	snapshot, err := n.snapshot()
	if err != nil {
		return Skipped, errors.New("E210").Wrap(err)
	}

	var dev, prod []string
	for _, d := range missing {
		if d.Kind == Dev {
			dev = append(dev, d.Spec())
		} else {
			prod = append(prod, d.Spec())
		}
	}

	for _, group := range []struct {
		dev   bool
		specs []string
	}{{dev: true, specs: dev}, {dev: false, specs: prod}} {
		if len(group.specs) == 0 {
			continue
		}
		args := installArgs(command, group.dev, group.specs)
		n.logger().Info("Installing dependencies", "command", command, "packages", strings.Join(group.specs, " "))

		out, err := n.runner()(ctx, n.Dir, command, args...)
		if err != nil {
			if rerr := n.restore(snapshot); rerr != nil {
				n.logger().Error("Failed to restore package manifests", "error", rerr)
			}
			return Skipped, errors.New("E210").
				WithDetail(strings.TrimSpace(string(out))).
				Wrap(err)
		}
	}

	return RestartRequired, nil
}

// Missing returns the Dev and Runtime descriptors that are neither declared
// in package.json nor present in node_modules. Tool descriptors are ignored.
func (n *NPM) Missing(deps []Descriptor) ([]Descriptor, error) {
	declared, err := n.declared()
	if err != nil {
		return nil, err
	}

	var missing []Descriptor
	for _, d := range deps {
		if d.Kind == Tool {
			continue
		}
		if declared[d.Name] && n.inNodeModules(d.Name) {
			continue
		}
		missing = append(missing, d)
	}
	return missing, nil
}

// packageManifest is the subset of package.json the installer reads.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (n *NPM) declared() (map[string]bool, error) {
	data, err := os.ReadFile(filepath.Join(n.Dir, "package.json"))
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, errors.New("E210").Wrap(err)
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.New("E210").
			WithDetail("package.json is not valid JSON").
			Wrap(err)
	}

	out := make(map[string]bool, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		out[name] = true
	}
	for name := range manifest.DevDependencies {
		out[name] = true
	}
	return out, nil
}

func (n *NPM) inNodeModules(name string) bool {
	_, err := os.Stat(filepath.Join(n.Dir, "node_modules", filepath.FromSlash(name), "package.json"))
	return err == nil
}

// snapshot reads the current manifests; absent files map to nil.
func (n *NPM) snapshot() (map[string][]byte, error) {
	out := make(map[string][]byte, len(manifestFiles))
	for _, name := range manifestFiles {
		data, err := os.ReadFile(filepath.Join(n.Dir, name))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		out[name] = data
	}
	return out, nil
}

func (n *NPM) restore(snapshot map[string][]byte) error {
	for name, data := range snapshot {
		path := filepath.Join(n.Dir, name)
		if data == nil {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// installArgs builds the add/install arguments for a package manager.
func installArgs(command string, dev bool, specs []string) []string {
	var args []string
	switch command {
	case "yarn":
		args = []string{"add"}
		if dev {
			args = append(args, "--dev")
		}
	case "pnpm":
		args = []string{"add"}
		if dev {
			args = append(args, "--save-dev")
		}
	default:
		args = []string{"install"}
		if dev {
			args = append(args, "--save-dev")
		} else {
			args = append(args, "--save")
		}
	}
	return append(args, specs...)
}

func (n *NPM) command() string {
	if n.Command == "" {
		return "npm"
	}
	return n.Command
}

func (n *NPM) look(name string) (string, error) {
	if n.lookPath != nil {
		return n.lookPath(name)
	}
	return exec.LookPath(name)
}

func (n *NPM) runner() commandFunc {
	if n.run != nil {
		return n.run
	}
	return runCommand
}

func (n *NPM) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out.Bytes(), nil
}
