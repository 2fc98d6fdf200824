package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CRMClient posts submission records to the n8n workflow that upserts the
// HubSpot contact.
type CRMClient struct {
	url  string
	http *http.Client
}

func NewCRMClient(url string, httpClient *http.Client) *CRMClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CRMClient{url: url, http: httpClient}
}

func (c *CRMClient) Sync(ctx context.Context, record map[string]any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode crm record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("crm responded with status %d", resp.StatusCode)
	}
	return nil
}
