package paymentservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платёжного шлюза
// Вызывается только диспетчером возвратов, асинхронно по отношению к отмене
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платёжного шлюза
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ReverseCharge запрашивает возврат средств по платежу
//
// Идемпотентен по ID бронирования: повторная отправка для той же отмены
// не создаёт второй возврат (шлюз отвечает 409 на дубликат, мы трактуем
// его как успех). Сетевые ошибки и 5xx - ErrRetryable, 4xx - ErrPermanent
func (c *Client) ReverseCharge(ctx context.Context, paymentRef string, amountCents int64, bookingID int64) error {
	url := fmt.Sprintf("%s/internal/payments/%s/reverse", c.baseURL, paymentRef)

	body, err := json.Marshal(reverseChargeRequest{
		AmountCents:    amountCents,
		BookingID:      bookingID,
		IdempotencyKey: "booking-" + strconv.FormatInt(bookingID, 10),
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
		// Недоступность шлюза - временная ошибка, отправка повторится
		return fmt.Errorf("%w: failed to execute request: %v", ErrRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		c.log.Info("ReverseCharge: reversal accepted for booking_id=%d, amount_cents=%d", bookingID, amountCents)
		return nil

	case resp.StatusCode == http.StatusConflict:
		// Возврат по этому бронированию уже выполнен
		c.log.Warn("ReverseCharge: duplicate reversal for booking_id=%d, treating as success", bookingID)
		return nil

	case resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status code %d: %s", ErrRetryable, resp.StatusCode, string(respBody))

	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status code %d: %s", ErrPermanent, resp.StatusCode, string(respBody))
	}
}
