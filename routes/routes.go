// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"vegmart/controllers"
	"vegmart/middleware"
	"vegmart/models"
	"vegmart/utils"
)

// Controllers bundles every handler group the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Product    *controllers.ProductController
	Payment    *controllers.PaymentController
	Onboarding *controllers.OnboardingController
	Admin      *controllers.AdminController
	Health     *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens *utils.TokenManager, authLimiter *middleware.IPRateLimiter) {
	router.Use(middleware.RequestLogger)
	authenticated := middleware.Auth(tokens)

	router.HandleFunc("/healthz", c.Health.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Public auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(authLimiter.Middleware)
	auth.HandleFunc("/register", c.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", c.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/send-otp", c.Auth.SendOTP).Methods(http.MethodPost)
	auth.HandleFunc("/verify-otp", c.Auth.VerifyOTP).Methods(http.MethodPost)
	auth.HandleFunc("/send-otp-forgetpass", c.Auth.SendResetOTP).Methods(http.MethodPost)
	auth.HandleFunc("/verify-otp-forgetpass", c.Auth.VerifyResetOTP).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", c.Auth.ResetPassword).Methods(http.MethodPost)
	if c.Auth.Google != nil {
		auth.HandleFunc("/google", c.Auth.GoogleRedirect).Methods(http.MethodGet)
		auth.HandleFunc("/google/callback", c.Auth.GoogleCallback).Methods(http.MethodGet)
	}

	// Processor callbacks authenticate by signature
	api.HandleFunc("/payment/webhook", c.Payment.Webhook).Methods(http.MethodPost)

	// Protected user routes
	user := api.PathPrefix("/user").Subrouter()
	user.Use(authenticated)
	user.HandleFunc("/profile", c.User.GetProfile).Methods(http.MethodGet)
	user.HandleFunc("/profile", c.User.UpdateProfile).Methods(http.MethodPatch)
	user.HandleFunc("/address", c.User.GetAddresses).Methods(http.MethodGet)
	user.HandleFunc("/address", c.User.AddAddress).Methods(http.MethodPost)
	user.HandleFunc("/address/{addressId}", c.User.UpdateAddress).Methods(http.MethodPut)
	user.HandleFunc("/address/{addressId}", c.User.DeleteAddress).Methods(http.MethodDelete)
	user.HandleFunc("/payment/create-intent", c.Payment.CreateIntent).Methods(http.MethodPost)
	user.HandleFunc("/payments", c.Payment.GetPayments).Methods(http.MethodGet)

	// Onboarding
	retailer := api.PathPrefix("/retailer").Subrouter()
	retailer.Use(authenticated)
	retailer.HandleFunc("/register-retailer", c.Onboarding.RegisterRetailer).Methods(http.MethodPost)
	retailer.Handle("/me", middleware.RequireRole(models.RoleRetailer)(http.HandlerFunc(c.Onboarding.GetRetailer))).Methods(http.MethodGet)

	courier := api.PathPrefix("/delivery-boy").Subrouter()
	courier.Use(authenticated)
	courier.HandleFunc("/register", c.Onboarding.RegisterDeliveryBoy).Methods(http.MethodPost)
	courier.Handle("/me", middleware.RequireRole(models.RoleDeliveryBoy)(http.HandlerFunc(c.Onboarding.GetDeliveryBoy))).Methods(http.MethodGet)

	// Product routes; the static /retailer path is registered before /{id}
	products := api.PathPrefix("/products").Subrouter()
	retailerOnly := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(models.RoleRetailer)(h))
	}
	ownerOrAdmin := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(models.RoleRetailer, models.RoleAdmin)(h))
	}
	products.Handle("/retailer", retailerOnly(c.Product.GetRetailerProducts)).Methods(http.MethodGet)
	products.HandleFunc("", c.Product.GetProducts).Methods(http.MethodGet)
	products.HandleFunc("/{id}", c.Product.GetProductByID).Methods(http.MethodGet)
	products.Handle("", retailerOnly(c.Product.CreateProduct)).Methods(http.MethodPost)
	products.Handle("/{id}", ownerOrAdmin(c.Product.UpdateProduct)).Methods(http.MethodPatch)
	products.Handle("/{id}", ownerOrAdmin(c.Product.DeleteProduct)).Methods(http.MethodDelete)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticated)
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/users", c.Admin.GetUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/block", c.Admin.BlockUser).Methods(http.MethodPatch)
	admin.HandleFunc("/retailers/{id}/status", c.Admin.SetRetailerStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/delivery-boys/{id}/status", c.Admin.SetDeliveryBoyStatus).Methods(http.MethodPatch)
}
