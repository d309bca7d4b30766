package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ninjapaylabs/ninjapay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidGitURL = errors.New("plugins: invalid git url")
	ErrCloneFailed   = errors.New("plugins: clone failed")
)

const migrateScript = "migrate.ts"

var repoNamePattern = regexp.MustCompile(`/([^/]+?)(?:\.git)?$`)

// Service clones plugin repositories into the plugins directory and runs
// their migration script when one exists. git and the script runner are
// opaque external processes.
type Service interface {
	Install(ctx context.Context, gitURL string) (string, error)
	List() ([]string, error)
}

type installer struct {
	dir    string
	runner string
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) Service {
	return &installer{
		dir:    cfg.PluginsDir,
		runner: cfg.PluginRunner,
		logger: logger,
	}
}

// RepoName extracts the repository name from a git URL.
func RepoName(gitURL string) (string, error) {
	match := repoNamePattern.FindStringSubmatch(strings.TrimSpace(gitURL))
	if match == nil || match[1] == "" {
		return "", ErrInvalidGitURL
	}
	return match[1], nil
}

// Install clones the repository, replacing any previous clone of the same
// name, then runs its migration script if present. A failing migration is
// logged, not fatal; the plugin stays installed.
func (s *installer) Install(ctx context.Context, gitURL string) (string, error) {
	name, err := RepoName(gitURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, name)
	if err := os.RemoveAll(target); err != nil {
		return "", err
	}

	clone := exec.CommandContext(ctx, "git", "clone", gitURL, target)
	output, err := clone.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCloneFailed, strings.TrimSpace(string(output)))
	}

	script := filepath.Join(target, migrateScript)
	if _, err := os.Stat(script); err == nil {
		run := exec.CommandContext(ctx, s.runner, "run", "--allow-read", "--allow-write", script)
		if output, err := run.CombinedOutput(); err != nil {
			s.logger.Error("plugin migration failed",
				zap.String("plugin", name),
				zap.String("output", strings.TrimSpace(string(output))))
		}
	} else {
		s.logger.Warn("plugin has no migration script", zap.String("plugin", name))
	}

	s.logger.Info("plugin installed", zap.String("plugin", name))
	return name, nil
}

func (s *installer) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(s.dir, 0o755); err != nil {
				return nil, err
			}
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

var Module = fx.Module("plugins",
	fx.Provide(New),
)
