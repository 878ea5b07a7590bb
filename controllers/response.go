package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/middleware"
	"vegmart/services"
)

const maxJSONBody = 1 << 20

// envelope is the shape of every JSON response
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: status < 400, Message: message, Data: data})
}

// writeError maps err to its status. Causes of internal and upstream
// failures are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal || kind == apperrors.KindUpstream {
		applog.Error(r.Context(), "http.error", err, map[string]any{"kind": kind.String()})
	}
	writeJSON(w, kind.HTTPStatus(), apperrors.PublicMessage(err), nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("Invalid input")
	}
	return nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(muxVar(r, name))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid " + name)
	}
	return id, nil
}

func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

// callerFrom turns the token claims into the identity services expect
func callerFrom(r *http.Request) (services.Caller, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return services.Caller{}, apperrors.Unauthorized("Authentication required")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.Caller{}, apperrors.Unauthorized("Invalid token subject")
	}
	return services.Caller{UserID: id, Role: claims.Role}, nil
}
