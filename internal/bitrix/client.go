package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(25) * time.Second,
		},
	}
}

func (c *Client) Call(ctx context.Context, method string, payload any, out any) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return fmt.Errorf("method is empty")
	}

	if !strings.HasSuffix(method, ".json") {
		method += ".json"
	}

	url := c.baseURL + method

	var bodyBytes []byte
	var err error
	if payload == nil {
		bodyBytes = []byte(`{}`)
	} else {
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var apiErr APIError
	_ = json.Unmarshal(raw, &apiErr)
	if !apiErr.IsZero() {
		return apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w; raw=%s", err, string(raw))
	}

	return nil
}

// GetDeal fetches the full deal record. An absent result envelope is
// reported as ErrEmptyResult so callers can abort their handler.
func (c *Client) GetDeal(ctx context.Context, id string) (Deal, error) {
	var resp dealResponse
	if err := c.Call(ctx, "crm.deal.get", map[string]any{"id": id}, &resp); err != nil {
		return Deal{}, fmt.Errorf("crm.deal.get id=%s: %w", id, err)
	}
	if resp.Result == nil {
		return Deal{}, fmt.Errorf("crm.deal.get id=%s: %w", id, ErrEmptyResult)
	}
	return *resp.Result, nil
}

func (c *Client) GetCompany(ctx context.Context, id string) (Company, error) {
	var resp companyResponse
	if err := c.Call(ctx, "crm.company.get", map[string]any{"id": id}, &resp); err != nil {
		return Company{}, fmt.Errorf("crm.company.get id=%s: %w", id, err)
	}
	if resp.Result == nil {
		return Company{}, fmt.Errorf("crm.company.get id=%s: %w", id, ErrEmptyResult)
	}
	return *resp.Result, nil
}

func (c *Client) GetDealFields(ctx context.Context) (map[string]FieldMeta, error) {
	var resp fieldsResponse
	if err := c.Call(ctx, "crm.deal.fields", nil, &resp); err != nil {
		return nil, fmt.Errorf("crm.deal.fields: %w", err)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("crm.deal.fields: %w", ErrEmptyResult)
	}
	return resp.Result, nil
}

func (c *Client) UpdateDealTitle(ctx context.Context, id, title string) error {
	payload := map[string]any{
		"id": id,
		"fields": map[string]any{
			"TITLE": title,
		},
	}
	if err := c.Call(ctx, "crm.deal.update", payload, nil); err != nil {
		return fmt.Errorf("crm.deal.update id=%s: %w", id, err)
	}
	return nil
}
