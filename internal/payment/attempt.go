package payment

import (
	"context"
	"errors"
	"sync"
)

// Stage of a payment attempt as driven by the payment screen
type Stage string

const (
	StageInput      Stage = "input"
	StageProcessing Stage = "processing"
	StageSuccess    Stage = "success"
	StageError      Stage = "error"
)

var (
	ErrPaymentInProgress = errors.New("a payment is already being processed")
	ErrAttemptCompleted  = errors.New("payment already completed")
	ErrNothingToPay      = errors.New("there is nothing to pay for")
)

// Attempt sequences one mobile-money payment over a Store:
// input -> processing -> success | error. An attempt in error goes back to
// input on the next Submit; success is terminal until Reset.
type Attempt struct {
	mu        sync.Mutex
	store     *Store
	prefix    string
	stage     Stage
	last      *Result
	onSuccess []func(Result)
}

func NewAttempt(store *Store, mobilePrefix string) *Attempt {
	if mobilePrefix == "" {
		mobilePrefix = DefaultMobilePrefix
	}
	return &Attempt{store: store, prefix: mobilePrefix, stage: StageInput}
}

// OnSuccess registers fn to run after a successful charge, once the stage
// is already success. Clearing carts on success is done here by callers.
func (a *Attempt) OnSuccess(fn func(Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSuccess = append(a.onSuccess, fn)
}

func (a *Attempt) Stage() Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stage
}

// LastResult returns the outcome of the latest charge, if any.
func (a *Attempt) LastResult() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return Result{}, false
	}
	return *a.last, true
}

// Reset puts a finished attempt back to input. It has no effect while a
// charge is processing.
func (a *Attempt) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stage != StageProcessing {
		a.stage = StageInput
		a.last = nil
	}
}

// Update runs fn against the store and starts a fresh attempt, unless a
// charge is processing. No charge can start while fn runs, so whatever fn
// queues is either part of the next charge or refused.
func (a *Attempt) Update(fn func(*Store) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage == StageProcessing {
		return ErrPaymentInProgress
	}
	if err := fn(a.store); err != nil {
		return err
	}
	a.stage = StageInput
	a.last = nil
	return nil
}

// Submit validates phoneNumber and charges the store's total. Validation
// problems are returned as errors and leave the attempt in input; a charge
// that was made always yields a Result. Once started the charge runs to
// completion even if ctx is cancelled.
func (a *Attempt) Submit(ctx context.Context, phoneNumber string) (Result, error) {
	a.mu.Lock()
	switch a.stage {
	case StageProcessing:
		a.mu.Unlock()
		return Result{}, ErrPaymentInProgress
	case StageSuccess:
		a.mu.Unlock()
		return Result{}, ErrAttemptCompleted
	case StageError:
		a.stage = StageInput
	}

	if err := ValidatePhoneNumber(phoneNumber, a.prefix); err != nil {
		a.mu.Unlock()
		return Result{}, err
	}
	if a.store.ItemCount() == 0 {
		a.mu.Unlock()
		return Result{}, ErrNothingToPay
	}
	a.stage = StageProcessing
	a.mu.Unlock()

	result := a.store.ProcessMobileMoneyPayment(context.WithoutCancel(ctx), phoneNumber)

	a.mu.Lock()
	a.last = &result
	if !result.Succeeded() {
		a.stage = StageError
		a.mu.Unlock()
		return result, nil
	}
	a.stage = StageSuccess
	hooks := append([]func(Result){}, a.onSuccess...)
	a.mu.Unlock()

	for _, fn := range hooks {
		fn(result)
	}
	return result, nil
}
