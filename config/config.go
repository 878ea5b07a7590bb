// config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs at startup
type Config struct {
	Port      string
	ClientURL string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTTTL    time.Duration
	OTPTTL    time.Duration

	MailProvider   string // "postmark" or "sendgrid"
	PostmarkToken  string
	SendGridAPIKey string
	EmailSender    string

	StripeSecretKey     string
	StripeWebhookSecret string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	AWSRegion string
	S3Bucket  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	MaxUploadBytes int64
	AuthRateLimit  float64 // requests per second per IP on /api/auth
	AuthRateBurst  int
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", k, v, d)
		return d
	}
	return parsed
}

func getInt(k string, d int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", k, v, d)
		return d
	}
	return n
}

func getFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using %g", k, v, d)
		return d
	}
	return f
}

// Load reads the environment. Call godotenv.Load first if a .env file is used.
func Load() Config {
	cfg := Config{
		Port:      getEnv("PORT", "8000"),
		ClientURL: getEnv("CLIENT_URL", ""),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "vegmart"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),
		OTPTTL:    getDuration("OTP_TTL", 10*time.Minute),

		MailProvider:   getEnv("MAIL_PROVIDER", "postmark"),
		PostmarkToken:  os.Getenv("POSTMARK_API_TOKEN"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@vegmart.local"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "vegmart"),

		AWSRegion: getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:  os.Getenv("AWS_S3_BUCKET"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:8000/api/auth/google/callback"),

		MaxUploadBytes: getInt("MAX_UPLOAD_BYTES", 5<<20),
		AuthRateLimit:  getFloat("AUTH_RATE_LIMIT", 1),
		AuthRateBurst:  int(getInt("AUTH_RATE_BURST", 10)),
	}
	log.Printf("[config] PORT=%s MONGO_DB=%s MAIL_PROVIDER=%s S3_BUCKET=%s", cfg.Port, cfg.MongoDatabase, cfg.MailProvider, cfg.S3Bucket)
	return cfg
}

// Missing lists the names of required settings that are empty.
func (c Config) Missing() []string {
	var missing []string
	required := []struct{ name, value string }{
		{"JWT_SECRET", c.JWTSecret},
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
		{"CLOUDINARY_CLOUD_NAME", c.CloudinaryCloudName},
		{"CLOUDINARY_API_KEY", c.CloudinaryAPIKey},
		{"CLOUDINARY_API_SECRET", c.CloudinaryAPISecret},
		{"AWS_S3_BUCKET", c.S3Bucket},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	switch c.MailProvider {
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
	default:
		if c.PostmarkToken == "" {
			missing = append(missing, "POSTMARK_API_TOKEN")
		}
	}
	return missing
}
