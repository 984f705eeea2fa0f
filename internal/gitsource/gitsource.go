package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Progress receives clone and pull progress output. Discarded by default.
var Progress io.Writer = io.Discard

// Sync clones the deck repository at url into localPath, or pulls the latest
// changes if a clone is already there.
func Sync(ctx context.Context, url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Cloning deck repository", "url", url, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      url,
			Depth:    1,
			Progress: Progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	slog.Info("Pulling deck repository", "path", localPath)
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: "origin",
		Progress:   Progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
	}
	return nil
}

// LocalPath maps a repository URL to <baseDir>/<host>/<path>. Both http(s)
// URLs and scp-style "git@host:owner/repo.git" forms are accepted; local
// paths and file:// URLs map to their base name.
func LocalPath(baseDir, repoURL string) (string, error) {
	if host, repoPath, ok := splitSCP(repoURL); ok {
		return filepath.Join(baseDir, host, strings.TrimSuffix(repoPath, ".git")), nil
	}

	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("could not parse git URL %s: %w", repoURL, err)
	}
	switch parsed.Scheme {
	case "http", "https", "ssh", "git":
		if parsed.Host == "" || strings.Trim(parsed.Path, "/") == "" {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return filepath.Join(baseDir, parsed.Hostname(), strings.TrimSuffix(parsed.Path, ".git")), nil
	case "file", "":
		name := strings.TrimSuffix(filepath.Base(parsed.Path), ".git")
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return filepath.Join(baseDir, "local", name), nil
	}
	return "", fmt.Errorf("unsupported git URL scheme %q: %s", parsed.Scheme, repoURL)
}

func splitSCP(repoURL string) (host, repoPath string, ok bool) {
	if strings.Contains(repoURL, "://") {
		return "", "", false
	}
	userHost, repoPath, found := strings.Cut(repoURL, ":")
	if !found || repoPath == "" {
		return "", "", false
	}
	_, host, found = strings.Cut(userHost, "@")
	if !found || host == "" {
		return "", "", false
	}
	return host, repoPath, true
}
