package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	Auth           AuthConfig
	AccessTTLMin   int  // access token time-to-live in minutes
	RefreshTTLDays int  // refresh token time-to-live in days
	BcryptCost     int  // bcrypt cost for password hashing
	CookieSecure   bool // Secure attribute on auth cookies (off for local dev)

	GoogleClientID     string // OAuth client id for Google sign-in
	GoogleClientSecret string // OAuth client secret for Google sign-in
	GoogleRedirectURL  string // callback URL registered with Google

	S3Region    string // object storage region
	S3Endpoint  string // object storage endpoint (empty for AWS default)
	S3Bucket    string // bucket receiving avatar uploads
	S3AccessKey string // object storage access key
	S3SecretKey string // object storage secret key

	SMTPHost string // mail relay host for password-reset mail
	SMTPPort string // mail relay port
	SMTPFrom string // From address on outgoing mail
}

// AuthConfig carries the two independent signing secrets for the token
// issuer. The secrets must differ: rotating one kind of token must never
// invalidate the other, and a shared secret would let a refresh token pass
// as an access token. Load refuses to start when they are equal.
type AuthConfig struct {
	AccessSecret  string // secret used to sign access tokens
	RefreshSecret string // secret used to sign refresh tokens
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:    must("APP_ENV"),      // environment (dev/test/prod)
		Port:   must("APP_PORT"),     // port to bind the HTTP server
		DBUser: must("DB_USER"),      // database user
		DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost: must("DB_HOST"),      // database host
		DBPort: must("DB_PORT"),      // database port
		DBName: must("DB_NAME"),      // database name
		Auth: AuthConfig{
			AccessSecret:  must("ACCESS_TOKEN_SECRET"),  // secret signing access tokens
			RefreshSecret: must("REFRESH_TOKEN_SECRET"), // secret signing refresh tokens
		},
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: os.Getenv("SMTP_PORT"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
	}
	if cfg.Auth.AccessSecret == cfg.Auth.RefreshSecret {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
