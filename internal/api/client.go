package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "GEOLINK_HTTP_TIMEOUT"
	uploadFormField    = "file"
)

// Client is a simple HTTP client for the geolink API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// KeepAlive calls GET /keep-alive.
func (c *Client) KeepAlive(ctx context.Context) (KeepAliveResponse, error) {
	var resp KeepAliveResponse
	err := c.do(ctx, http.MethodGet, "/keep-alive", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/info", nil, nil, &resp)
	return resp, err
}

// Upload sends image bytes as a multipart form and returns the minted id.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (UploadResponse, error) {
	var resp UploadResponse

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(uploadFormField, filepath.Base(filename))
	if err != nil {
		return resp, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return resp, err
	}
	if err := form.Close(); err != nil {
		return resp, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	err = c.send(req, &resp)
	return resp, err
}

func (c *Client) Report(ctx context.Context, report ReportRequest) error {
	return c.do(ctx, http.MethodPost, "/report", nil, report, nil)
}

// Latest returns the newest report for an image id (suffixed or canonical).
func (c *Client) Latest(ctx context.Context, imageID string) (LocationReport, error) {
	var resp LocationReport
	err := c.do(ctx, http.MethodGet, "/logs/last/"+url.PathEscape(imageID), nil, nil, &resp)
	return resp, err
}

// History returns every report for an image id, oldest first.
func (c *Client) History(ctx context.Context, imageID string) ([]LocationReport, error) {
	var resp []LocationReport
	err := c.do(ctx, http.MethodGet, "/logs/"+url.PathEscape(imageID), nil, nil, &resp)
	if resp == nil {
		resp = []LocationReport{}
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
