package lib

import (
	"os"
	"time"

	"github.com/cloudcopper/buildwatch/lib/types"
)

func GetEnvDefault(key, defaultValue string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return val
}

// GetEnvDurationDefault returns defaultValue if env key is not set or not a duration.
// The value may have leading days, e.g. 1d12h.
func GetEnvDurationDefault(key string, defaultValue time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := types.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return time.Duration(d)
}
