// Package deck loads the question/answer pairs a review session is built
// from: the built-in starter deck, markdown files, or a git repository of
// markdown files.
package deck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashreview/internal/domain"
	"github.com/conorfennell/flashreview/internal/gitsource"
	"github.com/conorfennell/flashreview/internal/parser"
)

// ErrEmpty is returned when a source yields no cards.
var ErrEmpty = errors.New("deck: no cards found")

// Source says where a deck comes from. With neither Repo nor Path set the
// starter deck is used.
type Source struct {
	Path     string // markdown file or directory
	Repo     string // git URL, cloned under ReposDir
	ReposDir string
}

// Load returns the pairs for src.
func Load(ctx context.Context, src Source) ([]domain.Pair, error) {
	var (
		pairs []domain.Pair
		err   error
	)
	switch {
	case src.Repo != "":
		pairs, err = loadRepo(ctx, src)
	case src.Path != "":
		pairs, err = loadPath(src.Path)
	default:
		return Starter(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrEmpty
	}
	return pairs, nil
}

func loadRepo(ctx context.Context, src Source) ([]domain.Pair, error) {
	localPath, err := gitsource.LocalPath(src.ReposDir, src.Repo)
	if err != nil {
		return nil, err
	}
	if err := gitsource.Sync(ctx, src.Repo, localPath); err != nil {
		return nil, err
	}
	return LoadDir(localPath)
}

func loadPath(path string) ([]domain.Pair, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile parses a single markdown file.
func LoadFile(path string) ([]domain.Pair, error) {
	pairs, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return dedupe(pairs), nil
}

// LoadDir parses every .md file under dir in lexical order. Files that fail
// to parse are skipped and logged; duplicate cards are kept once.
func LoadDir(dir string) ([]domain.Pair, error) {
	var pairs []domain.Pair
	var parseErrors int

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		filePairs, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors++
			slog.Warn("Skipping unreadable deck file", "path", path, "error", parseErr)
			return nil
		}
		pairs = append(pairs, filePairs...)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk deck directory %s: %w", dir, walkErr)
	}

	deduped := dedupe(pairs)
	slog.Info("Deck loaded",
		"path", dir,
		"parsed_cards", len(pairs),
		"duplicates", len(pairs)-len(deduped),
		"errors", parseErrors,
	)
	return deduped, nil
}

func dedupe(pairs []domain.Pair) []domain.Pair {
	seen := make(map[string]bool, len(pairs))
	out := make([]domain.Pair, 0, len(pairs))
	for _, p := range pairs {
		fp := Fingerprint(p)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, p)
	}
	return out
}
