// Package writesvc is the typed HTTP client for the external generation
// service. It only moves JSON; the pipeline itself lives on the other side.
package writesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the write-service over HTTP with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client. baseURL must not have a trailing slash.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartRequest launches a full generation run for an article.
type StartRequest struct {
	ArticleID string   `json:"articleId"`
	Title     string   `json:"title"`
	Keywords  []string `json:"keywords"`
	Notes     string   `json:"notes"`
	UserID    string   `json:"userId"`
	ProjectID string   `json:"projectId"`
}

// StartResponse returns the run id used for later status polls.
type StartResponse struct {
	GenerationID string `json:"generationId"`
}

// StatusResponse is one poll result for an in-flight run.
type StatusResponse struct {
	GenerationID string                 `json:"generationId"`
	Status       string                 `json:"status"` // running | completed | failed
	Progress     int                    `json:"progress"`
	Phase        string                 `json:"phase"`
	Content      string                 `json:"content,omitempty"`
	ResearchData map[string]interface{} `json:"researchData,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// Terminal reports whether the run has finished either way.
func (r *StatusResponse) Terminal() bool {
	return r.Status == "completed" || r.Status == "failed"
}

// RegenerateSectionRequest asks the service to rewrite one section in place.
type RegenerateSectionRequest struct {
	ArticleMarkdown string                 `json:"articleMarkdown"`
	SectionHeading  string                 `json:"sectionHeading"`
	ResearchData    map[string]interface{} `json:"researchData"`
	Title           string                 `json:"title"`
	Keywords        []string               `json:"keywords"`
	Notes           string                 `json:"notes"`
	UserID          string                 `json:"userId"`
	ProjectID       string                 `json:"projectId"`
	GenerationID    string                 `json:"generationId"`
}

// RegenerateSectionResponse carries the rewritten document.
type RegenerateSectionResponse struct {
	UpdatedContent        string `json:"updatedContent"`
	UpdatedSectionHeading string `json:"updatedSectionHeading"`
}

// Start launches generation and returns the run id.
func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, err
	}
	if resp.GenerationID == "" {
		return nil, fmt.Errorf("write-service: empty generation id")
	}
	return &resp, nil
}

// Status fetches the current state of a run.
func (c *Client) Status(ctx context.Context, generationID string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get(ctx, "/generate/"+generationID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegenerateSection rewrites a single section of an article.
func (c *Client) RegenerateSection(ctx context.Context, req RegenerateSectionRequest) (*RegenerateSectionResponse, error) {
	var resp RegenerateSectionResponse
	if err := c.post(ctx, "/regenerate-section", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("write-service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("write-service: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
