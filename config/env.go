package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBaseURL        = "http://localhost:3000"
	defaultChatURL           = "ws://localhost:3001/chat"
	defaultPollInterval      = time.Second
	defaultInactivityTimeout = 10 * time.Minute
	defaultHTTPTimeout       = 15 * time.Second
	defaultSessionDriver     = "file"
	defaultSessionPath       = "session/auth_admin"
	defaultRedisAddr         = "localhost:6379"
	defaultAppKey            = "change-me-in-production"
	defaultAppPort           = "8080"
	defaultAppEnv            = "local"
	defaultFanoutWorkers     = 8
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json and .env over the defaults once per process.
// Process environment variables always win over file values.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL":       defaultAPIBaseURL,
		"CHAT_URL":           defaultChatURL,
		"POLL_INTERVAL":      defaultPollInterval.String(),
		"INACTIVITY_TIMEOUT": defaultInactivityTimeout.String(),
		"HTTP_TIMEOUT":       defaultHTTPTimeout.String(),
		"SESSION_DRIVER":     defaultSessionDriver,
		"SESSION_PATH":       defaultSessionPath,
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"APP_KEY":            defaultAppKey,
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"LOG_LEVEL":          "",
		"FANOUT_WORKERS":     strconv.Itoa(defaultFanoutWorkers),
	}
}

// APIBaseURL is the KU-MAN backend host, without a trailing slash.
func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

// ChatURL is the websocket endpoint of the chat service.
func ChatURL() string {
	_ = Load()
	return get("CHAT_URL", defaultChatURL)
}

func PollInterval() time.Duration {
	_ = Load()
	return getDuration("POLL_INTERVAL", defaultPollInterval)
}

// InactivityTimeout returns the idle period after which the session is
// logged out. Zero disables the watchdog.
func InactivityTimeout() time.Duration {
	_ = Load()
	return getDuration("INACTIVITY_TIMEOUT", defaultInactivityTimeout)
}

func HTTPTimeout() time.Duration {
	_ = Load()
	return getDuration("HTTP_TIMEOUT", defaultHTTPTimeout)
}

func SessionDriver() string {
	_ = Load()

	driver := strings.ToLower(get("SESSION_DRIVER", defaultSessionDriver))
	switch driver {
	case "file", "redis", "memory":
		return driver
	default:
		return defaultSessionDriver
	}
}

func SessionPath() string {
	_ = Load()
	return get("SESSION_PATH", defaultSessionPath)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func AppKey() string {
	_ = Load()
	return get("APP_KEY", defaultAppKey)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func LogLevel() string {
	_ = Load()
	return get("LOG_LEVEL", "")
}

func FanoutWorkers() int {
	_ = Load()
	n, err := strconv.Atoi(get("FANOUT_WORKERS", ""))
	if err != nil || n <= 0 {
		return defaultFanoutWorkers
	}
	return n
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// mergeEnviron overrides every known key that is set in the process env.
func mergeEnviron(out map[string]string) {
	for key := range out {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = strings.TrimSpace(v)
		}
	}
	for _, key := range []string{"STORAGE_DISK", "STORAGE_LOCAL_ROOT", "S3_BUCKET", "S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT"} {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = strings.TrimSpace(v)
		}
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	// Bare integers are read as milliseconds.
	if ms, err := strconv.Atoi(raw); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key for the rest of the process. Used by CLI flags and
// tests.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
