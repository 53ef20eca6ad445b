package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nestlink/server/internal/delay"
)

// ErrGatewayDeclined is returned by gateways that refuse a charge
var ErrGatewayDeclined = errors.New("payment declined by gateway")

type ChargeRequest struct {
	PhoneNumber string
	Amount      int
}

type Receipt struct {
	Reference   string    `json:"reference"`
	PhoneNumber string    `json:"phone_number"`
	Amount      int       `json:"amount"`
	PaidAt      time.Time `json:"paid_at"`
}

// Gateway performs the actual charge. A production implementation talks to
// the mobile-money provider; callers only see the Result.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
}

// SimulatedGateway waits a fixed delay and then always succeeds.
type SimulatedGateway struct {
	delay  time.Duration
	logger *logrus.Logger
}

func NewSimulatedGateway(processingDelay time.Duration, logger *logrus.Logger) *SimulatedGateway {
	if logger == nil {
		logger = logrus.New()
	}
	return &SimulatedGateway{delay: processingDelay, logger: logger}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	g.logger.WithField("delay", g.delay).Debug("Simulating mobile money STK push")

	if err := delay.Wait(ctx, g.delay); err != nil {
		return Receipt{}, fmt.Errorf("charge interrupted: %w", err)
	}

	return Receipt{
		Reference:   uuid.NewString(),
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		PaidAt:      time.Now(),
	}, nil
}
