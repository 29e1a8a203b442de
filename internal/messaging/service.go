package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smsender/smsender/internal/ledger"
)

// Service relays SMS sends through the provider and keeps the credit ledger
// and audit log in step.
type Service struct {
	provider        Provider
	credits         ledger.Store
	recorder        Recorder
	logger          *slog.Logger
	storeTimeout    time.Duration
	providerTimeout time.Duration
}

// NewService constructs a messaging service. The recorder is optional; when
// nil no audit log is kept.
func NewService(provider Provider, credits ledger.Store, recorder Recorder, logger *slog.Logger, storeTimeout, providerTimeout time.Duration) *Service {
	return &Service{
		provider:        provider,
		credits:         credits,
		recorder:        recorder,
		logger:          logger,
		storeTimeout:    storeTimeout,
		providerTimeout: providerTimeout,
	}
}

// SendResult describes the outcome of a relayed send.
type SendResult struct {
	ProviderID       string
	RemainingCredits int64
	SentAt           time.Time
}

// Send relays a message without touching any credit balance.
func (s *Service) Send(ctx context.Context, to, body string) (SendResult, error) {
	if to == "" || body == "" {
		return SendResult{}, errors.New("recipient and message are required")
	}

	providerID, err := s.dispatch(ctx, to, body)
	if err != nil {
		return SendResult{}, err
	}

	s.record(ctx, to, body, providerID)
	return SendResult{ProviderID: providerID, RemainingCredits: -1, SentAt: time.Now().UTC()}, nil
}

// SendAsConsumer deducts exactly one credit before relaying. The debit is a
// single conditional update at the store layer, so concurrent sends against a
// balance of one let exactly one through. A failed relay refunds the credit.
func (s *Service) SendAsConsumer(ctx context.Context, accountID, to, body string) (SendResult, error) {
	if to == "" || body == "" {
		return SendResult{}, errors.New("recipient and message are required")
	}

	debitCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	balance, err := s.credits.DebitCredit(debitCtx, accountID)
	cancel()
	if err != nil {
		return SendResult{}, err
	}

	providerID, err := s.dispatch(ctx, to, body)
	if err != nil {
		s.refund(accountID)
		return SendResult{}, err
	}

	s.record(ctx, to, body, providerID)
	return SendResult{ProviderID: providerID, RemainingCredits: balance, SentAt: time.Now().UTC()}, nil
}

// History returns the sent-message audit log.
func (s *Service) History(ctx context.Context) ([]Record, error) {
	if s.recorder == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.recorder.List(ctx)
}

// dispatch invokes the provider under the configured timeout. The provider
// SDK is not context-aware, so the call runs in its own goroutine and the
// caller stops waiting when the deadline passes.
func (s *Service) dispatch(ctx context.Context, to, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	type outcome struct {
		id  string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		id, err := s.provider.Send(ctx, to, body)
		ch <- outcome{id: id, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-ch:
		return out.id, out.err
	}
}

// refund returns a debited credit after a failed relay. Best effort with its
// own deadline: the request context may already be cancelled.
func (s *Service) refund(accountID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.storeTimeout)
	defer cancel()
	if _, err := s.credits.GrantCredits(ctx, accountID, 1); err != nil && s.logger != nil {
		s.logger.Error("credit refund failed", "account_id", accountID, "error", err)
	}
}

// record appends to the audit log. Failures are logged, never surfaced: the
// message has already left the building.
func (s *Service) record(ctx context.Context, to, body, providerID string) {
	if s.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	record := Record{
		ID:         uuid.New().String(),
		Recipient:  to,
		Body:       body,
		ProviderID: providerID,
		SentAt:     time.Now().UTC(),
	}
	if err := s.recorder.Append(recordCtx, record); err != nil && s.logger != nil {
		s.logger.Warn("message record append failed", "provider_id", providerID, "error", err)
	}
}
