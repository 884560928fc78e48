package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
)

// DocumentMeta is the optional frontmatter of a diagram document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type DocumentMeta struct {
	Title string `json:"title" mapstructure:"title"`

	// Output overrides the artifact base name (without extension).
	Output string `json:"output" mapstructure:"output"`
	// Format overrides the output format for this document.
	Format string `json:"format" mapstructure:"format"`
	// RankDir overrides the layout direction for this document.
	RankDir string `json:"rankdir" mapstructure:"rankdir"`

	// Skip excludes the document from batch renders.
	Skip bool `json:"skip" mapstructure:"skip"`
}

// Document is a diagram source read from the workspace.
type Document struct {
	ID   string // path relative to the workspace root, without extension
	Meta DocumentMeta
	Body string
}

// Workspace adapts a Loam repository holding diagram documents.
type Workspace struct {
	Repo *loam.TypedRepository[DocumentMeta]
}

// New creates a workspace over an existing typed repository.
func New(repo *loam.TypedRepository[DocumentMeta]) *Workspace {
	return &Workspace{Repo: repo}
}

// Open initializes a read-only Loam repository rooted at dir.
func Open(dir string) (*Workspace, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// ReadOnly keeps Loam from sandboxing or writing into the user's tree.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DocumentMeta](repo)), nil
}

// Get retrieves a single document by ID.
func (w *Workspace) Get(ctx context.Context, id string) (Document, error) {
	doc, err := w.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return Document{ID: trimExtension(doc.ID), Meta: doc.Data, Body: doc.Content}, nil
}

// List returns every markdown document not marked skip, sorted by ID.
func (w *Workspace) List(ctx context.Context) ([]Document, error) {
	docs, err := w.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if !strings.EqualFold(filepath.Ext(doc.ID), ".md") && filepath.Ext(doc.ID) != "" {
			continue
		}
		if doc.Data.Skip {
			continue
		}
		id := trimExtension(doc.ID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		out = append(out, Document{ID: id, Meta: doc.Data, Body: doc.Content})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Watch emits the ID of every markdown document that changes until ctx is done.
func (w *Workspace) Watch(ctx context.Context) (<-chan string, error) {
	events, err := w.Repo.Watch(ctx, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
