package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tableside/internal/domain"
)

// OrderClient talks to the remote Order API, the source of truth for all
// placed orders.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type placeOrderRequest struct {
	TableID string            `json:"tableId"`
	Items   []domain.CartItem `json:"items"`
	Total   int64             `json:"total"`
}

type placeOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

func (c *OrderClient) PlaceOrder(ctx context.Context, tableID string, items []domain.CartItem, total int64) (string, error) {
	body, err := json.Marshal(placeOrderRequest{TableID: tableID, Items: items, Total: total})
	if err != nil {
		return "", err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var out placeOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("order rejected: %s", out.Message)
	}
	return out.OrderID, nil
}

type orderByTableResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

// GetOrderByTable fetches the current order for a table. A missing order
// is (nil, nil), not an error; the poll loop treats both errors and nil
// as "try again next tick".
func (c *OrderClient) GetOrderByTable(ctx context.Context, tableID string) (*domain.Order, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/orders/by-table/%s", c.baseURL, tableID), nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var out orderByTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success || out.Order == nil {
		return nil, nil
	}
	return out.Order, nil
}
