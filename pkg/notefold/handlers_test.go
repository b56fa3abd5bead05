package notefold_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/notefold"
	"github.com/notefold/notefold/pkg/pagetree"
)

func newTestServer(t *testing.T, cfg *notefold.Config) *httptest.Server {
	t.Helper()
	if cfg == nil {
		cfg = &notefold.Config{Memory: true, ServerPort: "0"}
	}
	app, err := notefold.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, user models.UserID, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if !user.IsZero() {
		req.Header.Set("Authorization", "Bearer "+user.String())
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	require.Equal(t, "healthy", body["status"])
}

func TestListPagesWithoutIdentityIsEmpty(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/pages")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decode[[]*models.Page](t, resp))
}

func TestCreatePageRequiresIdentity(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", models.UserID{}, map[string]string{"title": "X"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPageLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{
		"title": "Roadmap",
		"icon":  "🗺️",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	page := decode[models.Page](t, resp)
	require.Equal(t, "Roadmap", page.Title)
	require.Equal(t, 1, page.Position)

	// The new page is seeded with one empty paragraph block.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s/blocks", srv.URL, page.ID), user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blocks := decode[[]*models.Block](t, resp)
	require.Len(t, blocks, 1)
	require.Equal(t, models.BlockTypeParagraph, blocks[0].Type)
	require.Equal(t, "", blocks[0].Content.Text)

	// Partial update: title only.
	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/pages/%s", srv.URL, page.ID), user, map[string]any{
		"title": "Roadmap 2027",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Page](t, resp)
	require.Equal(t, "Roadmap 2027", updated.Title)
	require.Equal(t, "🗺️", updated.Icon)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/pages/%s", srv.URL, page.ID), user, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s", srv.URL, page.ID), user, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchParentNullMovesToRoot(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "Parent"})
	parent := decode[models.Page](t, resp)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{
		"title":     "Child",
		"parent_id": parent.ID,
	})
	child := decode[models.Page](t, resp)
	require.NotNil(t, child.ParentID)

	// Payload without parent_id leaves the parent untouched.
	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/pages/%s", srv.URL, child.ID), user, map[string]any{
		"title": "Still nested",
	})
	got := decode[models.Page](t, resp)
	require.NotNil(t, got.ParentID)

	// Explicit null moves the page to the root.
	req, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/api/pages/%s", srv.URL, child.ID),
		strings.NewReader(`{"parent_id": null}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+user.String())
	rawResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	got = decode[models.Page](t, rawResp)
	require.Nil(t, got.ParentID)
}

func TestPagesTree(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "Root"})
	root := decode[models.Page](t, resp)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{
		"title":     "Leaf",
		"parent_id": root.ID,
	})
	leaf := decode[models.Page](t, resp)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pages/tree", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	forest := decode[[]*pagetree.Node](t, resp)
	require.Len(t, forest, 1)
	require.Equal(t, root.ID, forest[0].Page.ID)
	require.Len(t, forest[0].Children, 1)
	require.Equal(t, leaf.ID, forest[0].Children[0].Page.ID)
}

func TestOwnersCannotSeeEachOther(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := models.NewUserID()
	bob := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", alice, map[string]any{"title": "Secret"})
	page := decode[models.Page](t, resp)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s", srv.URL, page.ID), bob, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpsertBlockValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "Doc"})
	page := decode[models.Page](t, resp)

	// Missing page id on the block payload is a validation failure.
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/blocks/%s", srv.URL, models.NewBlockID()), user, map[string]any{
		"type":    "paragraph",
		"content": map[string]any{"text": "hi"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A well-formed upsert succeeds.
	id := models.NewBlockID()
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/blocks/%s", srv.URL, id), user, map[string]any{
		"page_id":  page.ID,
		"type":     "todo",
		"content":  map[string]any{"text": "task", "checked": false},
		"position": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	block := decode[models.Block](t, resp)
	require.Equal(t, id, block.ID)
}

func TestUnconfiguredBackend(t *testing.T) {
	srv := newTestServer(t, &notefold.Config{ServerPort: "0"})
	user := models.NewUserID()

	// List reads degrade to empty.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pages", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decode[[]*models.Page](t, resp))

	// Writes report service unavailable.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "X"})
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Point reads do too.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s", srv.URL, models.NewPageID()), user, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReadOnlyModeRejectsWrites(t *testing.T) {
	srv := newTestServer(t, &notefold.Config{Memory: true, ReadOnly: true, ServerPort: "0"})
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "X"})
	resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pages", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestImportMarkdown(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "Imported"})
	page := decode[models.Page](t, resp)

	md := "# Heading\n\nBody text.\n\n- [x] done\n"
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/pages/%s/import", srv.URL, page.ID),
		strings.NewReader(md))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/markdown")
	req.Header.Set("Authorization", "Bearer "+user.String())

	rawResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rawResp.StatusCode)
	imported := decode[[]*models.Block](t, rawResp)
	require.Len(t, imported, 3)

	// Appended after the seed block with dense positions.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s/blocks", srv.URL, page.ID), user, nil)
	blocks := decode[[]*models.Block](t, resp)
	require.Len(t, blocks, 4)
	require.Equal(t, models.BlockTypeHeading1, blocks[1].Type)
	require.Equal(t, models.BlockTypeParagraph, blocks[2].Type)
	require.Equal(t, models.BlockTypeTodo, blocks[3].Type)
	for i, b := range blocks {
		require.Equal(t, i, b.Position)
	}
}

func TestImportMarkdownSparsePositions(t *testing.T) {
	srv := newTestServer(t, nil)
	user := models.NewUserID()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pages", user, map[string]any{"title": "Sparse"})
	page := decode[models.Page](t, resp)

	// Leave a gap behind the seed block: positions are now {0, 5}.
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/blocks/%s", srv.URL, models.NewBlockID()), user, map[string]any{
		"page_id":  page.ID,
		"type":     "paragraph",
		"content":  map[string]any{"text": "tail"},
		"position": 5,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/pages/%s/import", srv.URL, page.ID),
		strings.NewReader("imported line\n"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/markdown")
	req.Header.Set("Authorization", "Bearer "+user.String())
	rawResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rawResp.StatusCode)
	imported := decode[[]*models.Block](t, rawResp)
	require.Len(t, imported, 1)

	// The import lands past the tail position, never on it.
	require.Equal(t, 6, imported[0].Position)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/pages/%s/blocks", srv.URL, page.ID), user, nil)
	blocks := decode[[]*models.Block](t, resp)
	require.Len(t, blocks, 3)
	require.Equal(t, "tail", blocks[1].Content.Text)
	require.Equal(t, "imported line", blocks[2].Content.Text)
}
