package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MenuItem as served by the remote Menu API. Paused items are listed but
// must be excluded from ordering.
type MenuItem struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Paused   bool   `json:"paused"`
}

type MenuClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMenuClient(baseURL string, timeout time.Duration) *MenuClient {
	return &MenuClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type menuResponse struct {
	Success bool       `json:"success"`
	Items   []MenuItem `json:"items"`
}

func (c *MenuClient) GetMenu(ctx context.Context) ([]MenuItem, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/menu", nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu service returned status %d", resp.StatusCode)
	}

	var out menuResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("menu service reported failure")
	}
	return out.Items, nil
}
