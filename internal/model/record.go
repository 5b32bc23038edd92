package model

import "time"

// Record is one persisted tile variant: a model-number prefix with an
// optional type suffix, plus dimensions and a quantity. Variants sharing a
// prefix and dimensions are grouped for display only; uniqueness of
// (prefix, width, height, suffix) is not enforced, so duplicate variants
// can coexist as distinct records.
type Record struct {
	ID          int64     `json:"id"`
	ModelPrefix string    `json:"model_prefix"`
	TypeSuffix  string    `json:"type_suffix"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Quantity    int       `json:"quantity"`
	BatchID     string    `json:"batch_id,omitempty"`
	PhotoMime   string    `json:"photo_mime,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NoPrefix is stored when a record is saved without a model prefix.
const NoPrefix = "N/A"

// SuffixNone is the base model (no type suffix). Records store stable
// suffix tags; display labels are resolved only at render time.
const SuffixNone = ""

// Suffixes lists the known type suffix tags, in form order.
var Suffixes = []string{SuffixNone, "L", "HL-1", "HL-2", "D"}

// ValidSuffix reports whether s is a known suffix tag.
func ValidSuffix(s string) bool {
	for _, known := range Suffixes {
		if s == known {
			return true
		}
	}
	return false
}

// NormalizePrefix maps an empty prefix to the NoPrefix sentinel.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return NoPrefix
	}
	return prefix
}
