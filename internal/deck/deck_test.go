package deck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorfennell/flashreview/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStarter(t *testing.T) {
	pairs := Starter()
	if len(pairs) != 8 {
		t.Fatalf("Expected 8 starter cards, but got %d", len(pairs))
	}
	if pairs[0].Question != "What does supervised learning mean?" {
		t.Errorf("Unexpected first card: %q", pairs[0].Question)
	}

	pairs[0].Question = "changed"
	if Starter()[0].Question == "changed" {
		t.Error("Expected Starter to return a copy")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "Q: Alpha\nA: 1\n\nQ: Beta\nA: 2\n")
	writeFile(t, filepath.Join(dir, "nested", "b.md"), "Q: Gamma\nA: 3\n\nQ:   alpha \nA: 1\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "Q: Ignored\nA: not markdown\n")
	writeFile(t, filepath.Join(dir, ".git", "c.md"), "Q: Hidden\nA: git internals\n")

	emptyDir := t.TempDir()
	writeFile(t, filepath.Join(emptyDir, "readme.md"), "No cards here.\n")

	testCases := []struct {
		name      string
		src       Source
		questions []string
		wantErr   error
	}{
		{
			name:      "starter deck by default",
			src:       Source{},
			questions: nil,
		},
		{
			name:      "directory in lexical order without duplicates",
			src:       Source{Path: dir},
			questions: []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name:      "single file",
			src:       Source{Path: filepath.Join(dir, "nested", "b.md")},
			questions: []string{"Gamma", "  alpha "},
		},
		{
			name:    "no cards",
			src:     Source{Path: emptyDir},
			wantErr: ErrEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pairs, err := Load(context.Background(), tc.src)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, but got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() returned an unexpected error: %v", err)
			}
			if tc.questions == nil {
				if len(pairs) != len(Starter()) {
					t.Errorf("Expected the starter deck, but got %d cards", len(pairs))
				}
				return
			}
			if len(pairs) != len(tc.questions) {
				t.Fatalf("Expected %d cards, but got %d: %+v", len(tc.questions), len(pairs), pairs)
			}
			for i, q := range tc.questions {
				if pairs[i].Question != q {
					t.Errorf("Card %d: expected question '%s', but got '%s'", i, q, pairs[i].Question)
				}
			}
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("Expected an error for a missing deck path")
	}
}

func TestNormalize(t *testing.T) {
	p := domain.Pair{
		Question: "  What is HTMX? \r\n",
		Answer:   "A library for AJAX.",
		Context:  "Web Development",
	}
	expected := "what is htmx?\na library for ajax.\nweb development"
	if got := Normalize(p); got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// sha256 of "q\na\nc"
		expected := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		if got := Fingerprint(domain.Pair{Question: "Q", Answer: "A", Context: "C"}); got != expected {
			t.Errorf("Expected hash '%s', but got '%s'", expected, got)
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		a := domain.Pair{Question: "  what is go? ", Answer: "A programming language."}
		b := domain.Pair{Question: "What Is Go?", Answer: "A programming language."}
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("Expected hashes to be the same after normalization")
		}
	})

	t.Run("fields do not run together", func(t *testing.T) {
		a := domain.Pair{Question: "ab", Answer: "c"}
		b := domain.Pair{Question: "a", Answer: "bc"}
		if Fingerprint(a) == Fingerprint(b) {
			t.Error("Expected different field splits to hash differently")
		}
	})
}
