package common

import (
	"encoding/json"
	"time"

	"just-landed/tracker/internal/logging"
)

// Typed cache helpers. Values go through JSON so reads behave identically
// against the in-memory and Redis backends.

// SetJSON stores a value serialized as a JSON string.
func SetJSON(c CacheInterface, key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Cache: failed to marshal value", "key", key, "error", err.Error())
		return
	}
	c.Set(key, string(data), duration)
}

// AddJSON stores a value only if the key is absent. Used to seed per-flight
// entries from lookup results without clobbering fresher data.
func AddJSON(c CacheInterface, key string, value interface{}, duration time.Duration) {
	if _, found := c.Get(key); found {
		return
	}
	SetJSON(c, key, value, duration)
}

// GetJSON reads a value stored by SetJSON into out. Returns false on a miss
// or if the stored value can't be decoded.
func GetJSON(c CacheInterface, key string, out interface{}) bool {
	val, found := c.Get(key)
	if !found {
		return false
	}
	s, ok := val.(string)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		logging.Warn("Cache: failed to unmarshal value", "key", key, "error", err.Error())
		return false
	}
	return true
}
