// Package api is the HTTP client for the recognition and analytics service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

// DefaultBaseURL is the local development API.
const DefaultBaseURL = "http://localhost:8000"

// DefaultPredictPath is the frame recognition endpoint.
const DefaultPredictPath = "/predict/frame"

const (
	frameField    = "file"
	frameFilename = "frame.jpg"
	maxBody       = 1 << 20
)

// Client talks to the recognition and analytics API.
type Client struct {
	BaseURL     string
	PredictPath string
	HTTP        *http.Client
}

// New returns a client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		PredictPath: DefaultPredictPath,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Predict uploads one JPEG frame and returns the recognition result.
// No retries are attempted.
func (c *Client) Predict(ctx context.Context, frame []byte) (model.PredictionResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(frameField, frameFilename)
	if err != nil {
		return model.PredictionResult{}, &Error{Kind: NetworkError, Err: err}
	}
	if _, err := part.Write(frame); err != nil {
		return model.PredictionResult{}, &Error{Kind: NetworkError, Err: err}
	}
	if err := mw.Close(); err != nil {
		return model.PredictionResult{}, &Error{Kind: NetworkError, Err: err}
	}

	path := c.PredictPath
	if path == "" {
		path = DefaultPredictPath
	}
	var result model.PredictionResult
	if err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &body, &result); err != nil {
		return model.PredictionResult{}, err
	}
	if result.Label == signs.ErrorLabel {
		return result, &Error{Kind: InvalidFrame, Err: errorDetail(result.Error)}
	}
	return result, nil
}

func errorDetail(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

// LogPerformance records one attempt.
func (c *Client) LogPerformance(ctx context.Context, entry model.PerformanceLog) error {
	return c.postJSON(ctx, "/predict/log", entry, nil)
}

// Dashboard returns overall usage metrics.
func (c *Client) Dashboard(ctx context.Context) (model.DashboardMetrics, error) {
	var out model.DashboardMetrics
	err := c.getJSON(ctx, "/dashboard", &out)
	return out, err
}

// Students lists known students.
func (c *Client) Students(ctx context.Context) ([]model.StudentSummary, error) {
	var out struct {
		Students []model.StudentSummary `json:"students"`
	}
	err := c.getJSON(ctx, "/dashboard/students", &out)
	return out.Students, err
}

// Student returns aggregate statistics for one student.
func (c *Client) Student(ctx context.Context, id string) (model.StudentStats, error) {
	var out model.StudentStats
	err := c.getJSON(ctx, "/dashboard/student/"+url.PathEscape(id), &out)
	return out, err
}

// StudentPerformance returns a student's statistics for one sign.
func (c *Client) StudentPerformance(ctx context.Context, id string, sign model.Sign) (model.SignStats, error) {
	path := "/dashboard/performance/" + url.PathEscape(id)
	if sign != "" {
		path += "?sign=" + url.QueryEscape(string(sign))
	}
	var out model.SignStats
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// SignStatistics returns statistics across students for one sign.
func (c *Client) SignStatistics(ctx context.Context, sign model.Sign) (model.SignStats, error) {
	var out model.SignStats
	err := c.getJSON(ctx, "/dashboard/signs/"+url.PathEscape(string(sign)), &out)
	return out, err
}

// Modules returns the learning modules catalog.
func (c *Client) Modules(ctx context.Context) ([]model.Module, error) {
	var out struct {
		Modules []model.Module `json:"modules"`
	}
	err := c.getJSON(ctx, "/tutor/modules", &out)
	return out.Modules, err
}

// Module returns one module's details. A non-empty studentID adds that
// student's progress.
func (c *Client) Module(ctx context.Context, id int, studentID string) (model.ModuleDetail, error) {
	path := "/tutor/module/" + strconv.Itoa(id)
	if studentID != "" {
		path += "?student=" + url.QueryEscape(studentID)
	}
	var out model.ModuleDetail
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// Settings returns the stored settings.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var out model.Settings
	err := c.getJSON(ctx, "/settings", &out)
	return out, err
}

// UpdateSettings replaces the stored settings.
func (c *Client) UpdateSettings(ctx context.Context, s model.Settings) error {
	return c.postJSON(ctx, "/settings", s, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &Error{Kind: NetworkError, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &Error{Kind: NetworkError, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close after the body is consumed.
			_ = cerr
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Kind: NetworkError, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: ServerError, Status: resp.StatusCode, Err: fmt.Errorf("%s %s: %s", method, path, strings.TrimSpace(string(data)))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: ServerError, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
