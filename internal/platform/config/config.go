package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean; everything security-relevant
// (window bypass, attestor bypass) is an explicit field wired at construction,
// never an implicit runtime branch.
type Server struct {
	Addr          string
	JWTSigningKey string

	Timezone string

	OfficeHours OfficeHours
	Verify      Verification
	Presence    Presence

	// Holidays lists non-working days as YYYY-MM-DD; they never count
	// toward the report working-day denominator.
	Holidays []string

	// StationKeys maps station IDs to bcrypt hashes of their API keys,
	// parsed from "id=hash" pairs.
	StationKeys map[string]string

	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string
}

// OfficeHours holds the four time-of-day boundaries and lateness thresholds
// for the attendance window policy. Times are "HH:MM" local to Timezone.
type OfficeHours struct {
	CheckInOpen   string
	CheckInClose  string
	CheckOutOpen  string
	CheckOutClose string

	LateThreshold  time.Duration
	EarlyThreshold time.Duration

	// Bypass disables window checks entirely. Test wiring only; when set,
	// lateness is never reported.
	Bypass bool
}

// Verification holds recognizer endpoint configuration and decision
// parameters.
type Verification struct {
	RecognizerURL     string
	RecognitionAPIKey string
	DetectionAPIKey   string

	SimilarityThreshold float64
	DetectionThreshold  float64
	MinAttemptInterval  time.Duration
	RequestTimeout      time.Duration
}

// Presence configures the on-site attestation gate. When SSIDs are set the
// network attestor is used; otherwise a positive site radius selects the
// geo-fence attestor.
type Presence struct {
	AllowedSSIDs []string

	SiteLatitude     float64
	SiteLongitude    float64
	SiteRadiusMeters float64

	// Bypass admits every attempt without attestation. Test wiring only.
	Bypass bool
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getEnv("FACEGATE_ADDR", ":8080"),
		JWTSigningKey: getEnv("FACEGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Timezone:      getEnv("FACEGATE_TIMEZONE", "Asia/Kolkata"),
		OfficeHours: OfficeHours{
			CheckInOpen:    getEnv("FACEGATE_CHECKIN_OPEN", "08:00"),
			CheckInClose:   getEnv("FACEGATE_CHECKIN_CLOSE", "11:00"),
			CheckOutOpen:   getEnv("FACEGATE_CHECKOUT_OPEN", "16:00"),
			CheckOutClose:  getEnv("FACEGATE_CHECKOUT_CLOSE", "20:00"),
			LateThreshold:  getDuration("FACEGATE_LATE_THRESHOLD", 15*time.Minute),
			EarlyThreshold: getDuration("FACEGATE_EARLY_THRESHOLD", 15*time.Minute),
			Bypass:         getEnv("FACEGATE_WINDOW_BYPASS", "") == "true",
		},
		Verify: Verification{
			RecognizerURL:       getEnv("FACEGATE_RECOGNIZER_URL", "http://localhost:8000"),
			RecognitionAPIKey:   os.Getenv("FACEGATE_RECOGNITION_API_KEY"),
			DetectionAPIKey:     os.Getenv("FACEGATE_DETECTION_API_KEY"),
			SimilarityThreshold: getFloat("FACEGATE_SIMILARITY_THRESHOLD", 0.975),
			DetectionThreshold:  getFloat("FACEGATE_DETECTION_THRESHOLD", 0.8),
			MinAttemptInterval:  getDuration("FACEGATE_MIN_ATTEMPT_INTERVAL", 3*time.Second),
			RequestTimeout:      getDuration("FACEGATE_RECOGNIZER_TIMEOUT", 10*time.Second),
		},
		Presence: Presence{
			AllowedSSIDs:     getList("FACEGATE_ALLOWED_SSIDS"),
			SiteLatitude:     getFloat("FACEGATE_SITE_LATITUDE", 0),
			SiteLongitude:    getFloat("FACEGATE_SITE_LONGITUDE", 0),
			SiteRadiusMeters: getFloat("FACEGATE_SITE_RADIUS_METERS", 0),
			Bypass:           getEnv("FACEGATE_PRESENCE_BYPASS", "") == "true",
		},
		Holidays:     getList("FACEGATE_HOLIDAYS"),
		StationKeys:  getPairs("FACEGATE_STATION_KEYS"),
		PostgresDSN:  os.Getenv("FACEGATE_POSTGRES_DSN"),
		RedisURL:     os.Getenv("FACEGATE_REDIS_URL"),
		KafkaBrokers: getList("FACEGATE_KAFKA_BROKERS"),
		AuditTopic:   getEnv("FACEGATE_AUDIT_TOPIC", "facegate.audit"),
	}
}

// Location resolves the configured timezone. Calendar days and office-hours
// boundaries are interpreted in this location.
func (s Server) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getPairs(key string) map[string]string {
	pairs := getList(key)
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if k, v, ok := strings.Cut(p, "="); ok && k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
