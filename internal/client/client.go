// Package client is the Go client for the docsync HTTP API, including
// the editor surface and sync status poller used by front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrNotFound indicates the requested document or project doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the save was rejected by the stamp check.
	ErrConflict = errors.New("conflict")
)

// ConflictError carries the server's conflict details from a 409 response.
type ConflictError struct {
	Description string `json:"description"`
	ServerStamp int64  `json:"serverTimestamp"`
	ClientStamp int64  `json:"clientTimestamp"`
}

func (e *ConflictError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return "document save conflict"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// DocumentPayload is a loaded document.
type DocumentPayload struct {
	Content               string `json:"content"`
	LastModifiedTimestamp int64  `json:"lastModifiedTimestamp"`
}

// BackupInfo describes one snapshot of a document file.
type BackupInfo struct {
	FilePath   string `json:"filePath"`
	BackupPath string `json:"backupPath"`
	Timestamp  int64  `json:"timestamp"`
	Checksum   string `json:"checksum"`
	Size       int64  `json:"size"`
}

// Client calls the docsync HTTP API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New creates a client for the given server base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadDocument fetches a project document.
func (c *Client) LoadDocument(ctx context.Context, projectID, docType string) (*DocumentPayload, error) {
	var payload DocumentPayload
	path := fmt.Sprintf("/projects/%s/documents/%s", url.PathEscape(projectID), url.PathEscape(docType))
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SaveDocument saves content with the caller's last-known stamp and
// returns the new stamp. A 409 response comes back as a *ConflictError.
func (c *Client) SaveDocument(ctx context.Context, projectID, docType, content string, lastKnownStamp int64) (int64, error) {
	body := map[string]any{
		"content":            content,
		"lastKnownTimestamp": lastKnownStamp,
	}
	var result struct {
		NewTimestamp int64 `json:"newTimestamp"`
	}
	path := fmt.Sprintf("/projects/%s/documents/%s", url.PathEscape(projectID), url.PathEscape(docType))
	if err := c.do(ctx, http.MethodPut, path, body, &result); err != nil {
		return 0, err
	}
	return result.NewTimestamp, nil
}

// ListBackups lists snapshots for a document path, newest first.
func (c *Client) ListBackups(ctx context.Context, filePath string) ([]BackupInfo, error) {
	var result struct {
		Backups []BackupInfo `json:"backups"`
	}
	path := "/backups?filePath=" + url.QueryEscape(filePath)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Backups, nil
}

// RestoreBackup copies a snapshot back over a document.
func (c *Client) RestoreBackup(ctx context.Context, backupPath, targetPath string, snapshotFirst bool) error {
	body := map[string]any{
		"backupPath":    backupPath,
		"targetPath":    targetPath,
		"snapshotFirst": snapshotFirst,
	}
	return c.do(ctx, http.MethodPost, "/backups/restore", body, nil)
}

// WatcherStatus reports whether the server's file watcher is active.
func (c *Client) WatcherStatus(ctx context.Context) (bool, error) {
	var result struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.do(ctx, http.MethodGet, "/file-watcher/status", nil, &result); err != nil {
		return false, err
	}
	return result.IsActive, nil
}

// CreateProject registers a new project.
func (c *Client) CreateProject(ctx context.Context, id, name, description string) error {
	body := map[string]any{
		"id":          id,
		"name":        name,
		"description": description,
	}
	return c.do(ctx, http.MethodPost, "/projects", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		conflict := &ConflictError{}
		_ = json.NewDecoder(resp.Body).Decode(conflict)
		return conflict
	default:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("server error: %s", apiErr.Error)
	}
}
