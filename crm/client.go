// Package crm is the HTTP adapter to the CRM holding deal records.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/errors"
	"strings"
	"time"
)

const (
	DefaultTimeout = 5 * time.Second
	maxErrorBody   = 512
)

var _ contract.CRMClient = (*Client)(nil)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(log *slog.Logger, baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type dealResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	Value         *float64 `json:"value"`
	Stage         string   `json:"stage"`
}

func (d dealResponse) toSnapshot() domain.DealSnapshot {
	return domain.DealSnapshot{
		ID:            d.ID,
		Title:         d.Title,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Value:         d.Value,
		Stage:         d.Stage,
	}
}

// FetchDeal returns errors.ErrDealNotFound when the CRM has no such deal.
func (c *Client) FetchDeal(ctx context.Context, id string) (domain.DealSnapshot, error) {
	return c.do(ctx, http.MethodGet, id, nil)
}

// UpdateDealFields applies a partial update and returns the deal as stored by the CRM.
func (c *Client) UpdateDealFields(ctx context.Context, id string, patch map[string]any) (domain.DealSnapshot, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return domain.DealSnapshot{}, err
	}
	return c.do(ctx, http.MethodPatch, id, body)
}

func (c *Client) do(ctx context.Context, method, id string, body []byte) (domain.DealSnapshot, error) {
	endpoint := fmt.Sprintf("%s/deals/%s", c.baseURL, url.PathEscape(id))
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return domain.DealSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DealSnapshot{}, fmt.Errorf("crm %s %s: %w", method, id, err)
	}
	defer resp.Body.Close()
	c.log.Debug("CRM call", "method", method, "deal_id", id, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.DealSnapshot{}, fmt.Errorf("%w: %s", errors.ErrDealNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.DealSnapshot{}, &errors.StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var deal dealResponse
	if err := json.NewDecoder(resp.Body).Decode(&deal); err != nil {
		return domain.DealSnapshot{}, fmt.Errorf("decoding crm deal %s: %w", id, err)
	}
	if deal.ID == "" {
		deal.ID = id
	}
	return deal.toSnapshot(), nil
}
