package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	"github.com/IstiN/dmtools-sub007/internal/report"
)

// Client is the API client for the report service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // report generation performs collection I/O
		},
	}
}

// GenerateReports submits a report job and returns the produced documents
// with the paths the server wrote them to.
func (c *Client) GenerateReports(job *report.JobConfig) ([]report.ReportResult, error) {
	var response struct {
		Data []report.ReportResult `json:"data"`
	}
	if err := c.post("/api/v1/reports/generate", job, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListRuns retrieves recent report runs. An empty report name lists all.
func (c *Client) ListRuns(reportName string, limit int) ([]*domain.ReportRun, error) {
	params := url.Values{}
	if reportName != "" {
		params.Set("report", reportName)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []*domain.ReportRun `json:"data"`
	}
	if err := c.get("/api/v1/runs", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRun retrieves one run including its full document.
func (c *Client) GetRun(id string) (*domain.ReportRun, error) {
	var response struct {
		Data *domain.ReportRun `json:"data"`
	}
	if err := c.get("/api/v1/runs/"+id, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func decodeResponse(resp *http.Response, result interface{}) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
