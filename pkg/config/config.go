package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	Env    string
	Loaded bool // a .env file was found

	AuthMode  string // firebase | jwt
	JWTSecret string

	FirebaseCredentialsPath string
	FirebaseStorageBucket   string

	DocstoreBackend string // firestore | mongo | postgres | sqlite | memory
	MongoURI        string
	MongoDatabase   string
	PostgresURL     string
	SQLitePath      string

	StorageBackend string // firebase | s3 | memory
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	S3PublicURL    string

	MaxUploadMB int
}

// Load reads the configuration from the environment, after applying a .env file if present
func Load() *Config {
	loaded := godotenv.Load() == nil
	return &Config{
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		Loaded: loaded,

		AuthMode:  getEnv("AUTH_MODE", "firebase"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),

		DocstoreBackend: getEnv("DOCSTORE_BACKEND", "firestore"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "aora"),
		PostgresURL:     getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "aora.db"),

		StorageBackend: getEnv("STORAGE_BACKEND", "firebase"),
		S3Endpoint:     getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3Bucket:       getEnv("S3_BUCKET", "media"),
		S3UseSSL:       getEnvBool("S3_USE_SSL", false),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 200),
	}
}

// NeedsFirebase reports whether any configured component talks to Firebase
func (c *Config) NeedsFirebase() bool {
	return c.AuthMode == "firebase" || c.DocstoreBackend == "firestore" || c.StorageBackend == "firebase"
}

// Validate checks that the settings each selected backend requires are present
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "firebase":
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	switch c.DocstoreBackend {
	case "firestore", "sqlite", "memory":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI must be set when DOCSTORE_BACKEND=mongo")
		}
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR must be set when DOCSTORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown DOCSTORE_BACKEND %q", c.DocstoreBackend)
	}

	switch c.StorageBackend {
	case "firebase":
		if c.FirebaseStorageBucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET must be set when STORAGE_BACKEND=firebase")
		}
	case "s3", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}
