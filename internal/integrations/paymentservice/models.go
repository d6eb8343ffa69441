package paymentservice

// reverseChargeRequest тело запроса на возврат средств
// IdempotencyKey - ID бронирования: шлюз не выполнит один возврат дважды
type reverseChargeRequest struct {
	AmountCents    int64  `json:"amountCents"`
	BookingID      int64  `json:"bookingId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// ErrorResponse модель ошибки платёжного шлюза
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
