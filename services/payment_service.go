package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/models"
	"vegmart/payments"
	"vegmart/repositories"
	"vegmart/utils"
)

const defaultCurrency = "inr"

// IntentResult is what the client needs to confirm the payment
type IntentResult struct {
	ClientSecret string          `json:"clientSecret"`
	Payment      *models.Payment `json:"payment"`
}

// PaymentService creates payment intents and applies processor callbacks
type PaymentService struct {
	payments PaymentStore
	gateway  PaymentGateway
}

func NewPaymentService(store PaymentStore, gateway PaymentGateway) *PaymentService {
	return &PaymentService{payments: store, gateway: gateway}
}

// toMinorUnits converts a major unit amount (rupees) into paise
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent asks the processor for a payment intent of amount (major
// units) and records it as pending.
func (s *PaymentService) CreateIntent(ctx context.Context, userID primitive.ObjectID, amount float64, currency, method string) (*IntentResult, error) {
	minor := toMinorUnits(amount)
	if minor <= 0 {
		return nil, apperrors.Validation("Amount must be greater than zero")
	}
	if currency == "" {
		currency = defaultCurrency
	}
	currency, ok := utils.NormalizeCurrency(currency)
	if !ok {
		return nil, apperrors.Validation("Currency must be a 3 letter code")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = "card"
	}

	intent, err := s.gateway.CreateIntent(ctx, minor, currency, map[string]string{"userId": userID.Hex()})
	if err != nil {
		return nil, apperrors.Upstream("Failed to create payment intent", err)
	}

	p := &models.Payment{
		UserID:          userID,
		Amount:          minor,
		Currency:        currency,
		Status:          models.PaymentPending,
		PaymentMethod:   method,
		PaymentIntentID: intent.ID,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		// the intent stays unconfirmed at the processor and expires there
		return nil, apperrors.Internal("Error saving payment", err)
	}
	applog.Audit(ctx, "payment.intent.create", map[string]any{"payment_intent": intent.ID, "amount": minor, "currency": currency})
	return &IntentResult{ClientSecret: intent.ClientSecret, Payment: p}, nil
}

// statusForEvent maps a processor event type to a payment status
func statusForEvent(eventType string) (string, bool) {
	switch eventType {
	case payments.EventIntentSucceeded:
		return models.PaymentCompleted, true
	case payments.EventIntentFailed:
		return models.PaymentFailed, true
	case payments.EventChargeRefunded:
		return models.PaymentRefunded, true
	}
	return "", false
}

// HandleWebhook verifies and applies a processor callback. Events that do
// not concern a known payment are acknowledged without effect.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		applog.Security(ctx, "payment.webhook.reject", map[string]any{"err": err.Error()})
		return apperrors.Validation("Invalid webhook signature")
	}
	status, ok := statusForEvent(ev.Type)
	if !ok || ev.PaymentIntentID == "" {
		return nil
	}
	p, err := s.payments.UpdateStatusByIntent(ctx, ev.PaymentIntentID, status)
	if errors.Is(err, repositories.ErrNotFound) {
		applog.Info(ctx, "payment.webhook.unknown_intent", map[string]any{"payment_intent": ev.PaymentIntentID, "event": ev.ID})
		return nil
	}
	if err != nil {
		return apperrors.Internal("Error updating payment", err)
	}
	applog.Audit(ctx, "payment.status", map[string]any{"payment_id": p.ID.Hex(), "status": status, "event": ev.ID})
	return nil
}

func (s *PaymentService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	list, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Error fetching payments", err)
	}
	return list, nil
}
