// Package checkout moves carts and bookings into the payment store and
// clears them again once the mobile-money charge succeeds.
package checkout

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nestlink/server/internal/models"
	"nestlink/server/internal/payment"
	"nestlink/server/internal/pricing"
	"nestlink/server/internal/procurement"
	"nestlink/server/internal/relocation"
)

var (
	ErrSignInRequired   = errors.New("please sign in to continue with your purchase")
	ErrEmptyProcurement = errors.New("your procurement list is empty")
)

type Service struct {
	cart     *procurement.Store
	payments *payment.Store
	attempt  *payment.Attempt
	booker   *relocation.Booker
	feeRate  float64
	logger   *logrus.Logger
}

// NewService wires the checkout flows and registers the post-payment
// clearing on attempt.
func NewService(
	cart *procurement.Store,
	payments *payment.Store,
	attempt *payment.Attempt,
	booker *relocation.Booker,
	feeRate float64,
	logger *logrus.Logger,
) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	s := &Service{
		cart:     cart,
		payments: payments,
		attempt:  attempt,
		booker:   booker,
		feeRate:  feeRate,
		logger:   logger,
	}
	attempt.OnSuccess(s.onPaymentSucceeded)
	return s
}

// Summary prices the current cart.
func (s *Service) Summary() pricing.Summary {
	return pricing.Summarize(s.cart.Total(), s.feeRate)
}

// ProcurementCheckout queues the whole cart as one property charge worth
// the grand total. A property charge already queued is replaced, so the cart
// is never charged twice. The cart itself is kept until the payment
// succeeds.
func (s *Service) ProcurementCheckout(user *models.User) (models.PaymentItem, error) {
	if user == nil {
		return models.PaymentItem{}, ErrSignInRequired
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return models.PaymentItem{}, ErrEmptyProcurement
	}

	ids := make([]string, len(items))
	subtotal := 0
	for i, item := range items {
		ids[i] = item.Property.ID
		subtotal += item.Property.Price
	}
	summary := pricing.Summarize(subtotal, s.feeRate)

	item := models.PaymentItem{
		ID:          uuid.NewString(),
		Type:        models.PaymentProperty,
		Amount:      summary.GrandTotal,
		Description: propertyDescription(len(items)),
		Metadata: models.PropertyMetadata{
			ListingIDs: ids,
			Subtotal:   summary.Subtotal,
			ServiceFee: summary.ServiceFee,
		},
	}

	replaced := 0
	err := s.attempt.Update(func(payments *payment.Store) error {
		var err error
		replaced, err = payments.ReplaceType(item)
		return err
	})
	if err != nil {
		return models.PaymentItem{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"items":       len(items),
		"grand_total": summary.GrandTotal,
		"replaced":    replaced,
	}).Info("Procurement checked out")
	return item, nil
}

// BookRelocation books a vehicle and queues its charge.
func (s *Service) BookRelocation(req relocation.Request) (models.PaymentItem, error) {
	item, err := s.booker.Book(req)
	if err != nil {
		return models.PaymentItem{}, err
	}
	err = s.attempt.Update(func(payments *payment.Store) error {
		return payments.AddItem(item)
	})
	if err != nil {
		return models.PaymentItem{}, err
	}
	return item, nil
}

// Complete clears what a successful payment covered: the paid items leave
// the payment store and the listings of paid property items leave the cart.
// Anything queued or added to the cart after the charge started stays.
func (s *Service) Complete(paid []models.PaymentItem) {
	ids := make([]string, len(paid))
	listings := 0
	for i, item := range paid {
		ids[i] = item.ID
		if item.Type != models.PaymentProperty {
			continue
		}
		for _, listingID := range listingIDs(item) {
			if s.cart.Remove(listingID) {
				listings++
			}
		}
	}
	removed := s.payments.RemoveItems(ids...)

	s.logger.WithFields(logrus.Fields{
		"payment_items": removed,
		"listings":      listings,
	}).Info("Checkout completed")
}

func (s *Service) onPaymentSucceeded(result payment.Result) {
	s.Complete(result.Items)
}

func listingIDs(item models.PaymentItem) []string {
	switch meta := item.Metadata.(type) {
	case models.PropertyMetadata:
		return meta.ListingIDs
	case *models.PropertyMetadata:
		if meta != nil {
			return meta.ListingIDs
		}
	}
	return nil
}

func propertyDescription(n int) string {
	if n == 1 {
		return "Property procurement (1 item)"
	}
	return fmt.Sprintf("Property procurement (%d items)", n)
}
