// Package paymentprovider реализует клиент REST API платёжного провайдера
// с hosted checkout: создание платёжной сессии по заказу и проверка статуса
// заказа. Сумма передаётся провайдеру в основных единицах валюты, внутри
// платформы хранится в минорных.
package paymentprovider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client клиент платёжного провайдера.
type Client struct {
	appID      string
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(appID, secretKey, apiURL string) *Client {
	return &Client{
		appID:      appID,
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrderSession регистрирует заказ у провайдера и возвращает
// идентификатор платёжной сессии для hosted checkout.
func (c *Client) CreateOrderSession(reqParams CreateOrderRequest) (*CreateOrderResponse, error) {
	req, err := c.newRequest(http.MethodPost, "/orders", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var orderResp CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, err
	}
	return &orderResp, nil
}

// GetOrder запрашивает у провайдера текущий статус заказа.
func (c *Client) GetOrder(orderID string) (*OrderStatusResponse, error) {
	req, err := c.newRequest(http.MethodGet, fmt.Sprintf("/orders/%s", orderID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var statusResp OrderStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return nil, err
	}
	return &statusResp, nil
}
