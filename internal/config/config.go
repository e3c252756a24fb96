package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Throttle ThrottleConfig `mapstructure:"throttle" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// Token lifetimes in minutes.
	TokenLifetimeMinutes        int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// ThrottleConfig sets per-role request budgets, expressed as requests per
// minute. Staff roles get a higher budget than customers; anonymous traffic
// gets the lowest.
type ThrottleConfig struct {
	AnonymousPerMinute int `mapstructure:"anonymous_per_minute" validate:"required,gt=0"`
	CustomerPerMinute  int `mapstructure:"customer_per_minute" validate:"required,gt=0"`
	StaffPerMinute     int `mapstructure:"staff_per_minute" validate:"required,gt=0"`
}
