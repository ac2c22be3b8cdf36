// Package client is a Go client for the syllabus extraction API: it uploads
// a document, consumes the progress event stream, and reconstructs discrete
// events from the chunked response body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the given server base URL, e.g.
// "http://localhost:8080". The extraction call streams for the lifetime of
// the pipeline, so the underlying HTTP client carries no overall timeout;
// bound it with the context instead.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// ExtractSyllabus uploads one document and consumes the progress stream
// until a terminal event. onProgress may be nil. The response body is
// released on every exit path.
func (c *Client) ExtractSyllabus(ctx context.Context, filename string, file io.Reader, onProgress ProgressHandler) (*models.SyllabusStructure, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// The server rejects ingress failures with a plain JSON body before any
	// streaming begins; everything after that arrives as events.
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return nil, decodeAPIError(resp)
	}

	return consumeStream(resp.Body, onProgress)
}

// ApproveAssignments persists a selected set of extracted assignments.
func (c *Client) ApproveAssignments(ctx context.Context, courseName string, assignments []models.AssignmentDraft) (*models.ApproveResponse, error) {
	reqBody, err := json.Marshal(models.ApproveRequest{
		CourseName:  courseName,
		Assignments: assignments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/assignments/approve", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, decodeAPIError(resp)
	}

	var approveResp models.ApproveResponse
	if err := json.NewDecoder(resp.Body).Decode(&approveResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &approveResp, nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("server returned unexpected status %d", resp.StatusCode)
}
