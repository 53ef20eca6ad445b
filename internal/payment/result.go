package payment

import (
	"context"
	"errors"

	"nestlink/server/internal/models"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type FailureReason string

const (
	ReasonDeclined  FailureReason = "declined"
	ReasonCancelled FailureReason = "cancelled"
	ReasonGateway   FailureReason = "gateway_error"
)

// Result is the outcome of a charge: a receipt on success, a reason on
// failure.
type Result struct {
	Status  Status        `json:"status"`
	Amount  int           `json:"amount"`
	Receipt *Receipt      `json:"receipt,omitempty"`
	Reason  FailureReason `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`

	// Items charged, as queued when the charge started
	Items []models.PaymentItem `json:"items,omitempty"`
}

func (r Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

func (r Result) withItems(items []models.PaymentItem) Result {
	r.Items = items
	return r
}

func Succeeded(amount int, receipt Receipt) Result {
	return Result{Status: StatusSucceeded, Amount: amount, Receipt: &receipt}
}

func Failed(amount int, err error) Result {
	reason := ReasonGateway
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = ReasonCancelled
	case errors.Is(err, ErrGatewayDeclined):
		reason = ReasonDeclined
	}
	return Result{Status: StatusFailed, Amount: amount, Reason: reason, Message: err.Error()}
}
