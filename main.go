// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"vegmart/config"
	"vegmart/controllers"
	"vegmart/middleware"
	"vegmart/oauth"
	"vegmart/payments"
	"vegmart/repositories"
	"vegmart/routes"
	"vegmart/services"
	"vegmart/storage"
	"vegmart/utils"
)

func newMailer(cfg config.Config) utils.Mailer {
	if cfg.MailProvider == "sendgrid" {
		return utils.NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender)
	}
	return utils.NewPostmarkMailer(cfg.PostmarkToken, cfg.EmailSender)
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}
	cfg := config.Load()
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Fatalf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

// run serves until SIGINT or SIGTERM, or until the listener fails. Deferred
// cleanup always runs before it returns.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := repositories.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println(err)
		}
	}()
	db := client.Database(cfg.MongoDatabase)
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// Vendors
	images, err := storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		return err
	}
	documents, err := storage.NewS3(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	gateway := payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	emailService := utils.NewEmailService(newMailer(cfg))

	// Repositories
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	otps := repositories.NewOTPRepository(db)
	retailers := repositories.NewRetailerRepository(db)
	couriers := repositories.NewDeliveryBoyRepository(db)

	// Services
	otpService := services.NewOTPService(otps, emailService, cfg.OTPTTL)
	authService := services.NewAuthService(users, otpService, tokens)
	userService := services.NewUserService(users, images)
	productService := services.NewProductService(products, retailers, images)
	paymentService := services.NewPaymentService(paymentRepo, gateway)
	retailerService := services.NewRetailerService(users, retailers, documents, tokens)
	courierService := services.NewDeliveryBoyService(users, couriers, documents, tokens)

	// Initialize controllers
	var google controllers.GoogleProvider
	if cfg.GoogleClientID != "" {
		google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		log.Println("[config] GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}
	c := routes.Controllers{
		Auth:       controllers.NewAuthController(authService, google, cfg.ClientURL),
		User:       controllers.NewUserController(userService, cfg.MaxUploadBytes),
		Product:    controllers.NewProductController(productService, cfg.MaxUploadBytes),
		Payment:    controllers.NewPaymentController(paymentService),
		Onboarding: controllers.NewOnboardingController(retailerService, courierService, cfg.MaxUploadBytes),
		Admin:      controllers.NewAdminController(userService, retailerService, courierService),
		Health: &controllers.HealthController{Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}},
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, c, tokens, middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
