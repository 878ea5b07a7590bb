package controllers

import (
	"net/http"

	"vegmart/apperrors"
)

// AdminController exposes user moderation and onboarding approval
type AdminController struct {
	Users        UserService
	Retailers    RetailerService
	DeliveryBoys DeliveryBoyService
}

func NewAdminController(users UserService, retailers RetailerService, deliveryBoys DeliveryBoyService) *AdminController {
	return &AdminController{Users: users, Retailers: retailers, DeliveryBoys: deliveryBoys}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (ac *AdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, err := ac.Users.ListUsers(r.Context(), r.URL.Query().Get("role"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", users)
}

// BlockUser expects {"blocked": bool}
func (ac *AdminController) BlockUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in struct {
		Blocked *bool `json:"blocked"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Blocked == nil {
		writeError(w, r, apperrors.Validation("blocked is required"))
		return
	}
	if err := ac.Users.SetBlocked(r.Context(), caller, id, *in.Blocked); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "User updated", nil)
}

func (ac *AdminController) SetRetailerStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.Retailers.SetStatus(r.Context(), muxVar(r, "id"), in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Retailer status updated", nil)
}

func (ac *AdminController) SetDeliveryBoyStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.DeliveryBoys.SetStatus(r.Context(), muxVar(r, "id"), in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Delivery partner status updated", nil)
}
