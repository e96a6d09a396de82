package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	JWTKey      []byte
	JWTExp      time.Duration
	JWTIssuer   string
	JWTAudience string

	HashIterations int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	// First-admin setup gates. AdminSetupEnabled controls whether the
	// create-first-admin endpoint is mounted at all; AdminSetupKey is the
	// shared secret required by register-admin (empty key = endpoint
	// refuses everything).
	AdminSetupEnabled bool
	AdminSetupKey     string

	// Optional startup admin seeding. Left blank, no admin is provisioned
	// at boot; there is deliberately no default password.
	BootstrapAdminUsername  string
	BootstrapAdminEmail     string
	BootstrapAdminPassword  string
	BootstrapAdminFirstName string
	BootstrapAdminLastName  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		JWTKey:         []byte(getEnv("JWT_SECRET", "")),
		JWTExp:         time.Duration(getEnvAsInt("JWT_EXPIRATION_MINUTES", 300)) * time.Minute,
		JWTIssuer:      getEnv("JWT_ISSUER", "blog-api"),
		JWTAudience:    getEnv("JWT_AUDIENCE", "blog-api-clients"),
		HashIterations: getEnvAsInt("PASSWORD_HASH_ITERATIONS", 120000),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "user"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "blog_db"),
		DBSslMode:      getEnv("DB_SSLMODE", "disable"),

		AdminSetupEnabled: getEnvAsBool("ADMIN_SETUP_ENABLED", false),
		AdminSetupKey:     getEnv("ADMIN_SETUP_KEY", ""),

		BootstrapAdminUsername:  getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
		BootstrapAdminEmail:     getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword:  getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		BootstrapAdminFirstName: getEnv("BOOTSTRAP_ADMIN_FIRST_NAME", "Admin"),
		BootstrapAdminLastName:  getEnv("BOOTSTRAP_ADMIN_LAST_NAME", "User"),
	}

	// Running without a signing key would mean issuing forgeable tokens.
	if len(AppConfig.JWTKey) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
