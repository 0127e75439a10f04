package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPPort    string

	OTLPEndpoint string

	Lot   LotConfig
	Plate PlateConfig

	ArchiveEnabled bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// LotConfig describes the lot topology and tariff.
type LotConfig struct {
	Floors               int
	SpotsPerFloor        int
	HourlyRates          []float64
	GraceMinutes         int
	PaymentWindowMinutes int
}

// PlateConfig describes per-country registration shape rules.
type PlateConfig struct {
	EnforcedCountry string
	BasicPrefixes   string
	SpecialPrefixes string
}

// Rates returns the floor -> hourly rate mapping.
func (l LotConfig) Rates() map[int]float64 {
	rates := make(map[int]float64, len(l.HourlyRates))
	for floor, rate := range l.HourlyRates {
		rates[floor] = rate
	}
	return rates
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "carpark"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPPort:    getenv("HTTP_PORT", "8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		Lot: LotConfig{
			Floors:               getenvInt("LOT_FLOORS", 5),
			SpotsPerFloor:        getenvInt("LOT_SPOTS_PER_FLOOR", 50),
			HourlyRates:          getenvFloats("LOT_FLOOR_RATES", []float64{6, 5, 4, 3, 2}),
			GraceMinutes:         getenvInt("LOT_GRACE_MINUTES", 30),
			PaymentWindowMinutes: getenvInt("LOT_PAYMENT_WINDOW_MINUTES", 15),
		},
		Plate: PlateConfig{
			EnforcedCountry: getenv("PLATE_ENFORCED_COUNTRY", "PL"),
			BasicPrefixes:   getenv("PLATE_BASIC_PREFIXES", "BCDEFGKLNOPRSTWZ"),
			SpecialPrefixes: getenv("PLATE_SPECIAL_PREFIXES", "HU"),
		},

		ArchiveEnabled: getenvBool("ARCHIVE_ENABLED", false),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "carpark"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
	}

	// The rate table is authoritative for the floor count: a floor without a
	// rate could admit a vehicle it can never quote.
	if cfg.Lot.Floors != len(cfg.Lot.HourlyRates) {
		cfg.Lot.Floors = len(cfg.Lot.HourlyRates)
	}

	return cfg
}

// Module wires configuration loading.
var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloats(key string, def []float64) []float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return def
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
