package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Типы уведомлений, отправляемых ядром бронирования
const (
	TypeBookingConfirmed = "booking_confirmed"
	TypeJobClaimed       = "job_claimed"
	TypeStatusChanged    = "booking_status_changed"
	TypeBookingCancelled = "booking_cancelled"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса уведомлений
//
// Все вызовы fire-and-forget: ошибка доставки логируется и никогда
// не блокирует основной поток бронирования
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// notifyRequest тело запроса на отправку уведомления
type notifyRequest struct {
	UserID  int64       `json:"userId"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Notify отправляет уведомление пользователю
func (c *Client) Notify(ctx context.Context, userID int64, notifType string, payload interface{}) error {
	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)

	body, err := json.Marshal(notifyRequest{
		UserID:  userID,
		Type:    notifType,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	return nil
}
