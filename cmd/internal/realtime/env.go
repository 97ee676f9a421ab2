package realtime

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAllowedOrigins = "http://localhost,http://127.0.0.1"

// GatewayConfigFromEnv reads HIRING_WS_* settings.
func GatewayConfigFromEnv() GatewayConfig {
	return GatewayConfig{
		OriginRequired:   envBool("HIRING_WS_ORIGIN_REQUIRED", false),
		AllowedOrigins:   envCSV("HIRING_WS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		DevInsecure:      envBool("HIRING_WS_DEV_INSECURE", false),
		WriteTimeout:     envDuration("HIRING_WS_WRITE_TIMEOUT", defaultWriteTimeout),
		SendQueue:        envInt("HIRING_WS_SEND_QUEUE", defaultSendQueue),
		HeartbeatEvery:   envDuration("HIRING_WS_HEARTBEAT_INTERVAL", heartbeatInterval),
		HeartbeatTimeout: envDuration("HIRING_WS_HEARTBEAT_TIMEOUT", heartbeatTimeout),
		InboundRate:      float64(envInt("HIRING_WS_RATE_EVENTS", inboundRate)),
		InboundBurst:     envInt("HIRING_WS_RATE_BURST", inboundBurst),
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envCSV(key, def string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
