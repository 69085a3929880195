package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	PublicURL       string        // base URL used to build admin ajax links (ex: https://site.ext)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Automator
	CatalogFile    string        // optional YAML endpoint catalog, empty = embedded default
	ActivePlugins  []string      // plugin slugs satisfying endpoint dependents (ex: "tec,et")
	NonceSecret    string        // HMAC key for admin nonces
	NonceLifetime  time.Duration // nonce validity window (default: 24h)
	QueueRetention time.Duration // queued trigger entries older than this are pruned
	PruneInterval  time.Duration // how often the queue pruner runs
	RESTBurst      int           // rate limit burst per client IP on REST routes
	RESTRefill     int           // tokens refilled per client IP per minute
	AsyncProbe     bool          // dispatch the async support probe on startup

	// In-App Notifications
	IANFeedURL     string        // remote JSON feed, empty = bundled feed
	IANFeedFile    string        // optional YAML feed replacing the bundled one
	IANPluginSlugs []string      // extra plugin slugs on top of the defaults
	IANTimeout     time.Duration // remote feed timeout

	// Help Hub
	DocsBotKey string
	ZendeskKey string

	// Kafka mirror (optional, empty brokers = disabled)
	KafkaBrokers []string
	KafkaTopic   string

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict admin/metrics/events routes to specific IPs or CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("AUTOMATOR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AUTOMATOR_SHUTDOWN_TIMEOUT", 5*time.Second),
		PublicURL:       strings.TrimRight(getenv("AUTOMATOR_PUBLIC_URL", "http://localhost:8080"), "/"),

		// Logging
		LogLevel:  getenv("AUTOMATOR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AUTOMATOR_PRETTY_LOG", true),

		// Automator
		CatalogFile:    getenv("AUTOMATOR_CATALOG_FILE", ""),
		ActivePlugins:  splitAndTrim(getenv("AUTOMATOR_ACTIVE_PLUGINS", "tec,et")),
		NonceSecret:    requireEnv("AUTOMATOR_NONCE_SECRET"),
		NonceLifetime:  mustDuration("AUTOMATOR_NONCE_LIFETIME", 24*time.Hour),
		QueueRetention: mustDuration("AUTOMATOR_QUEUE_RETENTION", 7*24*time.Hour),
		PruneInterval:  mustDuration("AUTOMATOR_PRUNE_INTERVAL", time.Hour),
		RESTBurst:      getenvInt("AUTOMATOR_REST_BURST", 30),
		RESTRefill:     getenvInt("AUTOMATOR_REST_REFILL_PER_MIN", 60),
		AsyncProbe:     mustBool("AUTOMATOR_ASYNC_PROBE", true),

		// In-App Notifications
		IANFeedURL:     getenv("AUTOMATOR_IAN_FEED_URL", ""),
		IANFeedFile:    getenv("AUTOMATOR_IAN_FEED_FILE", ""),
		IANPluginSlugs: splitAndTrim(getenv("AUTOMATOR_IAN_PLUGIN_SLUGS", "")),
		IANTimeout:     mustDuration("AUTOMATOR_IAN_TIMEOUT", 15*time.Second),

		// Help Hub
		DocsBotKey: getenv("AUTOMATOR_DOCSBOT_KEY", ""),
		ZendeskKey: getenv("AUTOMATOR_ZENDESK_KEY", ""),

		// Kafka mirror
		KafkaBrokers: splitAndTrim(getenv("AUTOMATOR_KAFKA_BROKERS", "")),
		KafkaTopic:   getenv("AUTOMATOR_KAFKA_TOPIC", "automator.triggers"),

		// Redis settings
		RedisAddr:             requireEnv("AUTOMATOR_REDIS_ADDR"),
		RedisUser:             getenv("AUTOMATOR_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("AUTOMATOR_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("AUTOMATOR_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("AUTOMATOR_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: splitAndTrim(getenv("AUTOMATOR_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("AUTOMATOR_TRUST_PROXY", false),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: AUTOMATOR_REDIS_PASSWORD is required when AUTOMATOR_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.NonceSecret = "***REDACTED***"
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.DocsBotKey != "" {
		cp.DocsBotKey = "***REDACTED***"
	}
	if cp.ZendeskKey != "" {
		cp.ZendeskKey = "***REDACTED***"
	}
	return cp
}

// AjaxURL is the admin ajax endpoint the dashboard buttons post to.
func (c *Config) AjaxURL() string {
	return c.PublicURL + "/wp-admin/admin-ajax.php"
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
