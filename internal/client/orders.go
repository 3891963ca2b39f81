package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/shiplabel-dev/shiplabel/internal/models"
)

type servicesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Services map[string]map[string]json.RawMessage `json:"services"`
	} `json:"data"`
}

// ShipmentServices returns the carrier services the API offers, sorted by name
func (c *Client) ShipmentServices(ctx context.Context) ([]models.ShipmentService, error) {
	var resp servicesResponse
	if err := c.do(ctx, http.MethodGet, "/order-label/shipment-services", nil, &resp); err != nil {
		return nil, err
	}

	services := make([]models.ShipmentService, 0, len(resp.Data.Services))
	for name, attrs := range resp.Data.Services {
		services = append(services, models.ShipmentService{Name: name, Attributes: attrs})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	return services, nil
}

// CreateShipmentRequest is the body of POST /order-label/create-shipment
type CreateShipmentRequest struct {
	FormData models.ShipmentForm `json:"formData"`
	UserID   string              `json:"userId"`
}

// CreateShipment submits a shipment order on behalf of userID
func (c *Client) CreateShipment(ctx context.Context, form models.ShipmentForm, userID string) (*MessageResponse, error) {
	var resp MessageResponse
	req := CreateShipmentRequest{FormData: form, UserID: userID}
	if err := c.do(ctx, http.MethodPost, "/order-label/create-shipment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

// ListOrders returns the order history of userID. A missing list is an empty history.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, http.MethodGet, "/order-label/orders/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Orders == nil {
		return []models.Order{}, nil
	}
	return resp.Orders, nil
}
