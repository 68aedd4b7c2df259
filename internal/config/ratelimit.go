package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig describes one named limiter bucket.  Every bucket owns a
// distinct key prefix so that two buckets applied to the same request can
// never count against each other's Redis keyspace.
type RateLimitConfig struct {
    Enabled        bool
    Bucket         string // bucket name ("general", "auth", "static")
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    FailOpen       bool // on limiter-store errors: true lets traffic through, false rejects
    Debug          bool
}

// LoadRateLimitBucket builds the configuration for a named bucket.  Bucket
// specific environment variables (RATE_LIMIT_<BUCKET>_*) override the given
// defaults; the shared RATE_LIMIT_ENABLED / RATE_LIMIT_FAIL_OPEN switches
// apply to all buckets.
func LoadRateLimitBucket(bucket string, capacity int, refillEvery time.Duration) RateLimitConfig {
    up := strings.ToUpper(bucket)
    def := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Bucket:         bucket,
        Capacity:       envInt("RATE_LIMIT_"+up+"_CAPACITY", capacity),
        RefillTokens:   envInt("RATE_LIMIT_"+up+"_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_"+up+"_REFILL_INTERVAL", refillEvery),
        TTL:            envDur("RATE_LIMIT_"+up+"_TTL", 30*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_"+up+"_KEY_STRATEGY", "ip"),
        Prefix:         "rl:" + bucket, // one keyspace per bucket, not configurable
        FailOpen:       envBool("RATE_LIMIT_FAIL_OPEN", false),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if def.Capacity < 1 { def.Capacity = 1 }
    if def.RefillTokens < 1 { def.RefillTokens = 1 }
    if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
    minTTL := 5 * def.RefillInterval
    if def.TTL < minTTL { def.TTL = minTTL }
    return def
}

// RateLimitBuckets bundles the three limiter keyspaces used by the router.
type RateLimitBuckets struct {
    General RateLimitConfig // whole API surface
    Auth    RateLimitConfig // login/register/reset endpoints, much stricter
    Static  RateLimitConfig // archive/schedule reads
}

// LoadRateLimitBuckets returns the default bucket set.  The auth bucket
// defaults to 5 attempts with one token refilled every 3 minutes, which
// bounds credential guessing to roughly 5 attempts per 15 minutes per address.
func LoadRateLimitBuckets() RateLimitBuckets {
    return RateLimitBuckets{
        General: LoadRateLimitBucket("general", 60, time.Second),
        Auth:    LoadRateLimitBucket("auth", 5, 3*time.Minute),
        Static:  LoadRateLimitBucket("static", 120, time.Second),
    }
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
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
