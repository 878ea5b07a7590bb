package controllers

import (
	"context"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/models"
	"vegmart/services"
)

const maxWebhookBody = 64 << 10

// PaymentService is implemented by services.PaymentService
type PaymentService interface {
	CreateIntent(ctx context.Context, userID primitive.ObjectID, amount float64, currency, method string) (*services.IntentResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

type PaymentController struct {
	Payments PaymentService
}

func NewPaymentController(payments PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

type intentRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
}

// CreateIntent starts a payment and returns the client secret
func (pc *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in intentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := pc.Payments.CreateIntent(r.Context(), caller.UserID, in.Amount, in.Currency, in.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Payment intent created", res)
}

// Webhook receives processor events. The signature covers the raw body so
// it is read untouched.
func (pc *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, r, apperrors.Validation("Unreadable webhook body"))
		return
	}
	if err := pc.Payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]bool{"received": true})
}

func (pc *PaymentController) GetPayments(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := pc.Payments.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}
