package cache

import (
	"strconv"
	"strings"
	"time"

	"buffotte-api/internal/config"
)

// Namespace is the Redis key prefix for the Buffotte application.
const Namespace = "buffotte"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// StatsOverviewKey holds the aggregated item statistics payload.
func StatsOverviewKey() string {
	return formatKey("stats", "overview")
}

// PriceDistributionKey holds the price bucket payload for the pie chart.
func PriceDistributionKey() string {
	return formatKey("stats", "distribution")
}

// ItemHistoryKey caches a recent history slice per item.
func ItemHistoryKey(itemID int64, limit int) string {
	return formatKey("history", strconv.FormatInt(itemID, 10), strconv.Itoa(limit))
}

// StatsOverviewTTL returns the TTL for the overview aggregate.
func StatsOverviewTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// PriceDistributionTTL returns the TTL for distribution buckets; the shape
// of the catalogue moves slowly, so it gets the long class.
func PriceDistributionTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// ItemHistoryTTL returns the TTL for cached history slices.
func ItemHistoryTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}
