package controllers

import (
	"context"
	"net/http"

	"vegmart/models"
	"vegmart/services"
	"vegmart/storage"
)

// RetailerService is implemented by services.RetailerService
type RetailerService interface {
	Register(ctx context.Context, caller services.Caller, in services.RetailerInput, document *storage.File) (*services.RetailerRegistration, error)
	Mine(ctx context.Context, caller services.Caller) (*models.Retailer, error)
	SetStatus(ctx context.Context, id, status string) error
}

// DeliveryBoyService is implemented by services.DeliveryBoyService
type DeliveryBoyService interface {
	Register(ctx context.Context, caller services.Caller, in services.DeliveryBoyInput, license, idProof *storage.File) (*services.DeliveryBoyRegistration, error)
	Mine(ctx context.Context, caller services.Caller) (*models.DeliveryBoy, error)
	SetStatus(ctx context.Context, id, status string) error
}

// OnboardingController handles retailer and delivery-boy sign up
type OnboardingController struct {
	Retailers      RetailerService
	DeliveryBoys   DeliveryBoyService
	MaxUploadBytes int64
}

func NewOnboardingController(retailers RetailerService, deliveryBoys DeliveryBoyService, maxUploadBytes int64) *OnboardingController {
	return &OnboardingController{Retailers: retailers, DeliveryBoys: deliveryBoys, MaxUploadBytes: maxUploadBytes}
}

// RegisterRetailer expects shopName, shopAddress, licenseNumber and a
// document file.
func (oc *OnboardingController) RegisterRetailer(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := &multipartForm{maxFileBytes: oc.MaxUploadBytes}
	defer form.close()
	if err := form.parse(w, r, 1); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := form.file(r, "document", documentTypes)
	if err != nil {
		writeError(w, r, requireFile(err, "document"))
		return
	}
	res, err := oc.Retailers.Register(r.Context(), caller, services.RetailerInput{
		ShopName:      r.FormValue("shopName"),
		ShopAddress:   r.FormValue("shopAddress"),
		LicenseNumber: r.FormValue("licenseNumber"),
	}, doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Retailer registration submitted", res)
}

func (oc *OnboardingController) GetRetailer(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ret, err := oc.Retailers.Mine(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", ret)
}

// RegisterDeliveryBoy expects vehicleType, vehicleNumber and the
// drivingLicense and idProof files.
func (oc *OnboardingController) RegisterDeliveryBoy(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := &multipartForm{maxFileBytes: oc.MaxUploadBytes}
	defer form.close()
	if err := form.parse(w, r, 2); err != nil {
		writeError(w, r, err)
		return
	}
	license, err := form.file(r, "drivingLicense", documentTypes)
	if err != nil {
		writeError(w, r, requireFile(err, "drivingLicense"))
		return
	}
	idProof, err := form.file(r, "idProof", documentTypes)
	if err != nil {
		writeError(w, r, requireFile(err, "idProof"))
		return
	}
	res, err := oc.DeliveryBoys.Register(r.Context(), caller, services.DeliveryBoyInput{
		VehicleType:   r.FormValue("vehicleType"),
		VehicleNumber: r.FormValue("vehicleNumber"),
	}, license, idProof)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Delivery registration submitted", res)
}

func (oc *OnboardingController) GetDeliveryBoy(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := oc.DeliveryBoys.Mine(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", d)
}
