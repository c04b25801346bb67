// Package patientdir is a client for the clinic's patient directory
// service, which owns patient identity. Billing only reads from it.
package patientdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrNotFound = errors.New("patient not found")

type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	// WalletSnapshot is the directory's last known balance in kobo.
	// It is advisory only; the ledger is authoritative.
	WalletSnapshot int64 `json:"walletBalance"`
}

type Client struct {
	baseURL  string
	client   *http.Client
	apiToken string
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		apiToken: apiToken,
	}
}

// Lookup searches the directory by name, phone, or patient id.
func (c *Client) Lookup(ctx context.Context, query string) ([]Patient, error) {
	u := fmt.Sprintf("%s/api/v1/patients?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from patient directory", resp.StatusCode)
	}

	var patients []Patient
	if err := json.NewDecoder(resp.Body).Decode(&patients); err != nil {
		return nil, fmt.Errorf("decoding patients: %w", err)
	}

	return patients, nil
}

// Get fetches a single patient by id.
func (c *Client) Get(ctx context.Context, patientID string) (*Patient, error) {
	u := fmt.Sprintf("%s/api/v1/patients/%s", c.baseURL, url.PathEscape(patientID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from patient directory", resp.StatusCode)
	}

	var patient Patient
	if err := json.NewDecoder(resp.Body).Decode(&patient); err != nil {
		return nil, fmt.Errorf("decoding patient: %w", err)
	}

	return &patient, nil
}
