// shared/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration fields that are shared across multiple services.
type CommonConfig struct {
	RedisAddrs              []string      // Redis server addresses (e.g., "redis-cluster:6379")
	RedisPassword           string        // Redis password for authentication
	HeartbeatInterval       time.Duration // How often to send a heartbeat to registry (e.g., 5s)
	HeartbeatTTL            time.Duration // How long an instance is considered alive without a heartbeat (e.g., 15s)
	RegistryCleanupInterval time.Duration // How often the registry actively cleans stale entries (e.g., 30s)
	ServiceIP               string        // The IP address this service advertises for registration (Kubernetes Pod IP)
	ServicePort             int           // The port this service listens on, used for registration
}

// MatchServiceConfig holds configuration specific to the match-service.
type MatchServiceConfig struct {
	CommonConfig                            // Embed CommonConfig
	ListenAddr               string         // Address for the HTTP server (e.g., ":8083")
	MongoDBConnStr           string         // MongoDB connection string
	MongoDBDatabase          string         // MongoDB database name (e.g., "stricker")
	MongoDBMatchesCollection string         // MongoDB collection for matches
	SquadServiceURL          string         // Base URL of the squad-service (membership lookups)
	RewardServiceURL         string         // Base URL of the reward-service (post-match distribution)
	RosterGracePeriod        time.Duration  // Wall-clock grace before AFK reports are allowed (5m)
	AfkReportCooldown        time.Duration  // Cooldown between AFK reports from the same team (5m)
	MatchStartDeadline       time.Duration  // Advisory deadline for a ready match to start (10m)
	AdvisorInterval          time.Duration  // How often the advisory scheduler re-evaluates matches (30s)
	RingUpdateInterval       time.Duration  // How often the consistent hash ring is refreshed
}

// LoadCommonConfig loads common configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"redis-cluster-headless.stricker.svc.cluster.local:6379"} // Default for K8s Service
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RegistryCleanupInterval, err = getDuration("SERVICE_REGISTRY_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	// Service IP (for registration, from Kubernetes Pod IP)
	cfg.ServiceIP = os.Getenv("POD_IP") // Injected by Kubernetes
	if cfg.ServiceIP == "" {
		// Fallback for local development outside K8s or if not injected
		cfg.ServiceIP = "0.0.0.0"
		fmt.Printf("WARNING: POD_IP not set, defaulting ServiceIP to %s\n", cfg.ServiceIP)
	}

	return cfg, nil
}

// LoadMatchServiceConfig loads configuration for the match-service.
func LoadMatchServiceConfig() (*MatchServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for match-service: %w", err)
	}

	cfg := &MatchServiceConfig{
		CommonConfig:             common,
		ListenAddr:               os.Getenv("MATCH_SERVICE_LISTEN_ADDR"),
		MongoDBConnStr:           os.Getenv("MONGODB_CONN_STR"),
		MongoDBDatabase:          os.Getenv("MONGODB_DATABASE"),
		MongoDBMatchesCollection: os.Getenv("MONGODB_MATCHES_COLLECTION"),
		SquadServiceURL:          os.Getenv("SQUAD_SERVICE_URL"),
		RewardServiceURL:         os.Getenv("REWARD_SERVICE_URL"),
	}

	// Apply defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8083"
	}
	if cfg.MongoDBConnStr == "" {
		cfg.MongoDBConnStr = "mongodb://mongodb-service:27017" // Default for K8s Service
	}
	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "stricker"
	}
	if cfg.MongoDBMatchesCollection == "" {
		cfg.MongoDBMatchesCollection = "matches"
	}
	if cfg.SquadServiceURL == "" {
		cfg.SquadServiceURL = "http://squad-service:8081" // Default for K8s internal DNS
	}
	if cfg.RewardServiceURL == "" {
		cfg.RewardServiceURL = "http://reward-service:8082"
	}

	// Extract ServicePort from ListenAddr
	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from MATCH_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	// Protocol timings
	cfg.RosterGracePeriod, err = getDuration("MATCH_ROSTER_GRACE_PERIOD", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AfkReportCooldown, err = getDuration("MATCH_AFK_REPORT_COOLDOWN", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.MatchStartDeadline, err = getDuration("MATCH_START_DEADLINE", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AdvisorInterval, err = getDuration("MATCH_ADVISOR_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RingUpdateInterval, err = getDuration("MATCH_RING_UPDATE_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper function to parse duration from environment variable
func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

// extractPort extracts the numeric port from a listen address (e.g., ":8083" -> 8083, "0.0.0.0:8083" -> 8083)
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		// If SplitHostPort fails, check if ListenAddr is just a port (e.g., ":8083")
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid ListenAddr format for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number '%s': %w", portStr, err)
	}
	return port, nil
}
