package payment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"nestlink/server/internal/models"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrInvalidType   = errors.New("unknown payment type")
)

// Store aggregates the charges queued by the property and relocation
// checkout flows. Duplicate items are allowed.
type Store struct {
	mu      sync.RWMutex
	items   []models.PaymentItem
	gateway Gateway
	logger  *logrus.Logger
}

func NewStore(gateway Gateway, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if gateway == nil {
		gateway = NewSimulatedGateway(0, logger)
	}
	return &Store{gateway: gateway, logger: logger}
}

func validateItem(item models.PaymentItem) error {
	if item.Amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, item.Amount)
	}
	if !item.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, item.Type)
	}
	return nil
}

// AddItem appends item. The item is checked before the store is touched.
func (s *Store) AddItem(item models.PaymentItem) error {
	if err := validateItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"item_id": item.ID,
		"type":    item.Type,
		"amount":  item.Amount,
	}).Debug("Queued payment item")
	return nil
}

// ReplaceType swaps every queued item of item's type for item, keeping the
// position of the first one replaced. It returns how many were replaced.
func (s *Store) ReplaceType(item models.PaymentItem) (int, error) {
	if err := validateItem(item); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.PaymentItem, 0, len(s.items)+1)
	replaced := 0
	for _, existing := range s.items {
		if existing.Type != item.Type {
			kept = append(kept, existing)
			continue
		}
		if replaced == 0 {
			kept = append(kept, item)
		}
		replaced++
	}
	if replaced == 0 {
		kept = append(kept, item)
	}
	s.items = kept
	return replaced, nil
}

// RemoveItems drops the items with the given ids. Unknown ids are ignored.
func (s *Store) RemoveItems(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	removed := len(s.items) - len(kept)
	clear(s.items[len(kept):])
	s.items = kept
	return removed
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the queued charges in insertion order.
func (s *Store) Items() []models.PaymentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PaymentItem{}, s.items...)
}

func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Amount
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ProcessMobileMoneyPayment charges the current total to phoneNumber. The
// number must already have passed ValidatePhoneNumber. The outcome is
// reported in the Result; gateway failures never surface as errors.
// The queued items are left untouched either way. The Result lists the
// items the amount was computed from.
func (s *Store) ProcessMobileMoneyPayment(ctx context.Context, phoneNumber string) Result {
	items := s.Items()
	amount := 0
	for _, item := range items {
		amount += item.Amount
	}
	log := s.logger.WithFields(logrus.Fields{
		"phone":  maskPhone(phoneNumber),
		"amount": amount,
	})
	log.Info("Processing mobile money payment")

	receipt, err := s.gateway.Charge(ctx, ChargeRequest{PhoneNumber: phoneNumber, Amount: amount})
	if err != nil {
		log.WithError(err).Warn("Mobile money payment failed")
		return Failed(amount, err).withItems(items)
	}

	log.WithField("reference", receipt.Reference).Info("Mobile money payment succeeded")
	return Succeeded(amount, receipt).withItems(items)
}

// maskPhone keeps the prefix and the last two digits for logs
func maskPhone(phone string) string {
	if len(phone) < 5 {
		return "***"
	}
	return phone[:3] + "*****" + phone[len(phone)-2:]
}
