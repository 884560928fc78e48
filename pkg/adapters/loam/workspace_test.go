package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/mdgraph/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T, docs ...core.Document) *Workspace {
	t.Helper()
	_, repo := testutils.SetupTestRepo(t, docs...)
	return New(loam.NewTypedRepository[DocumentMeta](repo))
}

func TestWorkspace_List(t *testing.T) {
	ws := setupWorkspace(t,
		core.Document{ID: "services.md", Content: `---
title: Services
rankdir: TB
---
# {UserService} [svc_user]
`},
		core.Document{ID: "infra/db.md", Content: `---
output: database
---
# {DB} [db]
`},
		core.Document{ID: "draft.md", Content: `---
skip: true
---
# {Draft} [draft]
`},
	)

	docs, err := ws.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "infra/db", docs[0].ID)
	assert.Equal(t, "database", docs[0].Meta.Output)
	assert.Contains(t, docs[0].Body, "# {DB} [db]")

	assert.Equal(t, "services", docs[1].ID)
	assert.Equal(t, "Services", docs[1].Meta.Title)
	assert.Equal(t, "TB", docs[1].Meta.RankDir)
}

func TestWorkspace_Get(t *testing.T) {
	ws := setupWorkspace(t, core.Document{ID: "one.md", Content: "---\ntitle: One\n---\n# {One} [one]\n"})

	doc, err := ws.Get(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, "one", doc.ID)
	assert.Equal(t, "One", doc.Meta.Title)

	_, err = ws.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "a/b", trimExtension("a/b.md"))
	assert.Equal(t, "plain", trimExtension("plain"))
}
