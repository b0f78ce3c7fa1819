package domain

// KeyValueStore is the durable local storage the logger mirrors entries into.
// Values are opaque strings; the store itself imposes no size policy.
type KeyValueStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
