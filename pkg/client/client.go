// Package client provides a Go HTTP client for programmatic access to the
// notefold API, plus [EditSession], a client-side editing session that
// drives the block engine and the title debouncer over the HTTP endpoints.
//
// All operations use the same [github.com/notefold/notefold/pkg/models]
// entities as the server. The caller's identity is the user id sent as a
// bearer token; authentication proper happens outside this system.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/pagetree"
	"github.com/notefold/notefold/pkg/store"
)

// Client provides typed access to the notefold REST API.
//
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     models.UserID
}

// NewClient creates a new notefold API client. The baseURL should include
// the protocol and host (e.g. "http://localhost:8080") without a trailing
// slash. The client is initialized with a 30-second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetUser sets the caller identity sent with every request.
func (c *Client) SetUser(id models.UserID) {
	c.userID = id
}

// doRequest performs an HTTP request with proper headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if !c.userID.IsZero() {
		req.Header.Set("Authorization", "Bearer "+c.userID.String())
	}

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into the target struct
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks the health status of the server
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// Page operations

// ListPages retrieves the caller's flat page list
func (c *Client) ListPages(ctx context.Context) ([]*models.Page, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/pages", nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Page
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// PagesTree retrieves the caller's assembled page forest
func (c *Client) PagesTree(ctx context.Context) ([]*pagetree.Node, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/pages/tree", nil)
	if err != nil {
		return nil, err
	}

	var result []*pagetree.Node
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// CreatePage creates a new page; the server assigns its position and seeds
// an initial empty paragraph block
func (c *Client) CreatePage(ctx context.Context, in store.CreatePage) (*models.Page, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/pages", in)
	if err != nil {
		return nil, err
	}

	var result models.Page
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPage retrieves a page by ID
func (c *Client) GetPage(ctx context.Context, id models.PageID) (*models.Page, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/pages/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.Page
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// updatePagePayload shapes the PATCH body so an omitted parent field never
// turns into an accidental move-to-root.
type updatePagePayload struct {
	Title    *string         `json:"title,omitempty"`
	Icon     *string         `json:"icon,omitempty"`
	ParentID **models.PageID `json:"parent_id,omitempty"`
}

// UpdatePage applies a partial update to a page
func (c *Client) UpdatePage(ctx context.Context, id models.PageID, upd store.PageUpdate) (*models.Page, error) {
	payload := updatePagePayload{
		Title: upd.Title,
		Icon:  upd.Icon,
	}
	if upd.SetParent {
		parent := upd.ParentID
		payload.ParentID = &parent
	}
	resp, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/api/pages/%s", id), payload)
	if err != nil {
		return nil, err
	}

	var result models.Page
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DeletePage deletes a page and all of its blocks
func (c *Client) DeletePage(ctx context.Context, id models.PageID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/pages/%s", id), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// Block operations

// ListBlocks retrieves a page's blocks ordered by position
func (c *Client) ListBlocks(ctx context.Context, pageID models.PageID) ([]*models.Block, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/pages/%s/blocks", pageID), nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Block
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertBlock inserts or replaces a block keyed by its ID
func (c *Client) UpsertBlock(ctx context.Context, block *models.Block) (*models.Block, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/blocks/%s", block.ID), block)
	if err != nil {
		return nil, err
	}

	var result models.Block
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DeleteBlock deletes a block
func (c *Client) DeleteBlock(ctx context.Context, id models.BlockID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/blocks/%s", id), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// ImportMarkdown appends blocks parsed from markdown source to a page
func (c *Client) ImportMarkdown(ctx context.Context, pageID models.PageID, src []byte) ([]*models.Block, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/pages/%s/import", c.baseURL, pageID), bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/markdown")
	if !c.userID.IsZero() {
		req.Header.Set("Authorization", "Bearer "+c.userID.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	var result []*models.Block
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}
