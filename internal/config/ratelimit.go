package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig drives the Redis token bucket.  Guests hit two buckets:
// "scan" for QR entry and "guest" for the room-service API.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string // ip | session | route | ip_route | session_route
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* values, letting a scoped variable
// (RATE_LIMIT_SCAN_CAPACITY for scope "scan") override the shared one.
func LoadRateLimitConfig(scope string) RateLimitConfig {
    up := strings.ToUpper(scope)
    scoped := func(name string) string {
        if v := os.Getenv("RATE_LIMIT_" + up + "_" + name); v != "" {
            return "RATE_LIMIT_" + up + "_" + name
        }
        return "RATE_LIMIT_" + name
    }
    def := RateLimitConfig{
        Enabled:        envBool(scoped("ENABLED"), true),
        Capacity:       envInt(scoped("CAPACITY"), 30),
        RefillTokens:   envInt(scoped("REFILL_TOKENS"), 1),
        RefillInterval: envDur(scoped("REFILL_INTERVAL"), 2*time.Second),
        TTL:            envDur(scoped("TTL"), 10*time.Minute),
        KeyStrategy:    envStr(scoped("KEY_STRATEGY"), "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl") + ":" + strings.ToLower(scope),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if def.Capacity < 1 { def.Capacity = 1 }
    if def.RefillTokens < 1 { def.RefillTokens = 1 }
    if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
    minTTL := 5 * def.RefillInterval
    if def.TTL < minTTL { def.TTL = minTTL }
    return def
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on": return true
    case "0", "false", "no", "off": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
