package chatservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент чат-сервиса
// Вызывается один раз при назначении исполнителя на бронирование
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента чат-сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ensureThreadRequest тело запроса на создание треда
type ensureThreadRequest struct {
	CustomerID     int64 `json:"customerId"`
	ProfessionalID int64 `json:"professionalId"`
	BookingID      int64 `json:"bookingId"`
}

// ensureThreadResponse ответ с ID треда
type ensureThreadResponse struct {
	ThreadID string `json:"threadId"`
}

// EnsureThread создает (или находит существующий) чат-тред
// между клиентом и исполнителем для бронирования
func (c *Client) EnsureThread(ctx context.Context, customerID, professionalID, bookingID int64) (string, error) {
	url := fmt.Sprintf("%s/internal/threads", c.baseURL)

	body, err := json.Marshal(ensureThreadRequest{
		CustomerID:     customerID,
		ProfessionalID: professionalID,
		BookingID:      bookingID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: unexpected status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	var threadResp ensureThreadResponse
	if err := json.NewDecoder(resp.Body).Decode(&threadResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return threadResp.ThreadID, nil
}
