// ============================================================================
// backend/internal/shared/config.go
// Gateway configuration management and environment variable helpers
// ============================================================================

package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// Configuration Structs
// ============================================================================

// ServiceConfig holds configuration common to every binary in the module
type ServiceConfig struct {
	ServiceName string `validate:"required"`
	Environment string `validate:"oneof=development staging production test"`
	LogLevel    string // debug, info, warn, error

	// MongoDB Configuration (optional; empty URI selects the in-memory bundle store)
	MongoDB MongoConfig

	// gRPC Configuration
	GRPC GRPCConfig

	// Security Configuration
	Security SecurityConfig
}

// GRPCConfig holds gRPC-specific configuration
type GRPCConfig struct {
	Port              string `validate:"required,numeric"`
	MaxRecvMsgSize    int    `validate:"gt=0"`
	MaxSendMsgSize    int    `validate:"gt=0"`
	ConnectionTimeout time.Duration
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	JWTSecret string `validate:"required"`
	JWTIssuer string
}

// PortalAPIConfig describes the remote portal API the gateway aggregates
type PortalAPIConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// StoreConfig controls persistence of last good bundles
type StoreConfig struct {
	Collection string        `validate:"required"`
	Retention  time.Duration `validate:"gt=0"`
	SweepCron  string        `validate:"required"`
}

// EffectsConfig holds the transient login/logout effect windows
type EffectsConfig struct {
	LoginWindow  time.Duration `validate:"gte=0"`
	LogoutWindow time.Duration `validate:"gte=0"`
}

// GatewayConfig holds dashboard gateway configuration
type GatewayConfig struct {
	ServiceConfig
	HTTPPort string `validate:"required,numeric"`

	PortalAPI PortalAPIConfig
	Store     StoreConfig
	Effects   EffectsConfig

	// CORS Configuration
	CORS CORSConfig
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `validate:"min=1"`
	AllowedMethods   []string `validate:"min=1"`
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

// ============================================================================
// Configuration Loading Functions
// ============================================================================

// LoadEnv loads environment variables from .env file
func LoadEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		logrus.Warnf("%s file not found, using system environment variables", envFile)
		return err
	}

	logrus.Infof("Successfully loaded environment from %s", envFile)
	return nil
}

// LoadServiceConfig loads common service configuration from environment
func LoadServiceConfig(serviceName string) (*ServiceConfig, error) {
	config := &ServiceConfig{
		ServiceName: serviceName,
		Environment: strings.ToLower(GetEnv("ENVIRONMENT", "development")),
		LogLevel:    strings.ToLower(GetEnv("LOG_LEVEL", "info")),
	}

	config.MongoDB = MongoConfig{
		URI:            GetEnv("MONGO_URI", ""),
		Database:       GetEnv("MONGO_DB_NAME", "portal_dashboard"),
		ConnectTimeout: GetDurationEnv("MONGO_CONNECT_TIMEOUT", 20*time.Second),
		MaxPoolSize:    uint64(GetIntEnv("MONGO_MAX_POOL_SIZE", 20)),
		MinPoolSize:    uint64(GetIntEnv("MONGO_MIN_POOL_SIZE", 2)),
		MaxIdleTime:    GetDurationEnv("MONGO_MAX_IDLE_TIME", 30*time.Second),
	}

	config.GRPC = GRPCConfig{
		Port:              GetEnv("GRPC_PORT", DefaultHealthGRPCPort),
		MaxRecvMsgSize:    GetIntEnv("GRPC_MAX_RECV_MSG_SIZE", 4*1024*1024),
		MaxSendMsgSize:    GetIntEnv("GRPC_MAX_SEND_MSG_SIZE", 4*1024*1024),
		ConnectionTimeout: GetDurationEnv("GRPC_CONNECTION_TIMEOUT", 10*time.Second),
	}

	config.Security = SecurityConfig{
		JWTSecret: GetEnv("JWT_SECRET", ""),
		JWTIssuer: GetEnv("JWT_ISSUER", ""),
	}

	if config.Security.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return config, nil
}

// LoadGatewayConfig loads dashboard gateway configuration
func LoadGatewayConfig() (*GatewayConfig, error) {
	baseConfig, err := LoadServiceConfig("dashboard-gateway")
	if err != nil {
		return nil, err
	}

	config := &GatewayConfig{
		ServiceConfig: *baseConfig,
		HTTPPort:      GetEnv("HTTP_PORT", DefaultGatewayHTTPPort),
	}

	config.PortalAPI = PortalAPIConfig{
		BaseURL: strings.TrimRight(GetEnv("PORTAL_API_BASE_URL", "http://localhost:5000/api"), "/"),
		Timeout: GetDurationEnv("PORTAL_API_TIMEOUT", 10*time.Second),
	}

	config.Store = StoreConfig{
		Collection: GetEnv("BUNDLE_COLLECTION", "dashboard_bundles"),
		Retention:  GetDurationEnv("BUNDLE_RETENTION", 72*time.Hour),
		SweepCron:  GetEnv("BUNDLE_SWEEP_CRON", "0 * * * *"),
	}

	config.Effects = EffectsConfig{
		LoginWindow:  GetDurationEnv("LOGIN_EFFECT_WINDOW", 1500*time.Millisecond),
		LogoutWindow: GetDurationEnv("LOGOUT_EFFECT_WINDOW", 1200*time.Millisecond),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   GetStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		AllowedMethods:   GetStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   GetStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
		AllowCredentials: GetBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           GetIntEnv("CORS_MAX_AGE", 300),
	}

	return config, nil
}

// ============================================================================
// Environment Variable Helper Functions
// ============================================================================

// GetEnv retrieves an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntEnv retrieves an integer environment variable or returns a default value
func GetIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.Warnf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetBoolEnv retrieves a boolean environment variable or returns a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logrus.Warnf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetDurationEnv retrieves a duration environment variable or returns a default value
// Supports format like "30s", "5m", "1h"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logrus.Warnf("Invalid duration value for %s: %s, using default: %v", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetStringSliceEnv retrieves a comma-separated string list or returns a default value
func GetStringSliceEnv(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// ============================================================================
// Configuration Validation
// ============================================================================

var validate = validator.New()

// ValidateGatewayConfig validates gateway configuration
func ValidateGatewayConfig(config *GatewayConfig) error {
	if config == nil {
		return fmt.Errorf("gateway config cannot be nil")
	}

	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid gateway config: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid gateway config: %s", strings.Join(fields, ", "))
}

// ============================================================================
// Configuration Display (for debugging)
// ============================================================================

// PrintGatewayConfig logs gateway configuration (sanitized)
func PrintGatewayConfig(config *GatewayConfig) {
	logrus.WithFields(logrus.Fields{
		"service":     config.ServiceName,
		"environment": config.Environment,
		"log_level":   config.LogLevel,
		"http_port":   config.HTTPPort,
		"grpc_port":   config.GRPC.Port,
	}).Info("Gateway configuration")
	logrus.WithFields(logrus.Fields{
		"base_url": config.PortalAPI.BaseURL,
		"timeout":  config.PortalAPI.Timeout,
	}).Info("Portal API configuration")
	logrus.WithFields(logrus.Fields{
		"mongo":      config.MongoDB.URI != "",
		"database":   config.MongoDB.Database,
		"collection": config.Store.Collection,
		"retention":  config.Store.Retention,
		"sweep_cron": config.Store.SweepCron,
	}).Info("Bundle store configuration")
	logrus.WithFields(logrus.Fields{
		"allowed_origins":   config.CORS.AllowedOrigins,
		"allowed_methods":   config.CORS.AllowedMethods,
		"allow_credentials": config.CORS.AllowCredentials,
	}).Info("CORS configuration")
}

// ============================================================================
// Default Port Mapping
// ============================================================================

const (
	DefaultGatewayHTTPPort = "8080"
	DefaultHealthGRPCPort  = "50060"
)

// IsDevelopment checks if running in development environment
func IsDevelopment(config *ServiceConfig) bool {
	return config.Environment == "development"
}

// IsProduction checks if running in production environment
func IsProduction(config *ServiceConfig) bool {
	return config.Environment == "production"
}
