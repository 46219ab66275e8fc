package lib

import "strings"

// IsKeyBlacklisted returns true for config keys with special meaning
func IsKeyBlacklisted(key string) bool {
	return strings.HasPrefix(key, "_")
}

// IsKeyValueBlacklisted returns true when value of the key must not be printed
func IsKeyValueBlacklisted(key string) bool {
	list := []string{
		"PASSWORD",
		"SECRET",
		"TOKEN",
	}

	key = strings.ToUpper(key)
	for _, term := range list {
		if strings.Contains(key, term) {
			return true
		}
	}

	return false
}
