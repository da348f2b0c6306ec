// Package normalize turns raw lead field values into canonical typed values.
// All functions are pure; the tower-type and carrier normalizers are total.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aerocell/towersync/internal/model"
)

// SentinelUnlock is the placeholder lead vendors substitute for redacted
// contact data. Any field containing it is treated as absent.
const SentinelUnlock = "contact to unlock"

// CarrierUnknown is returned for absent carrier values.
const CarrierUnknown = "Unknown"

// CarrierGhost marks a tower with no confirmed tenant yet.
const CarrierGhost = "Ghost Lead"

var upperCaser = cases.Upper(language.Und)

// TowerType maps free-text tower type to a canonical value. Unmatched or
// absent input defaults to MACRO.
func TowerType(raw string) model.TowerType {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "MACRO"), strings.Contains(upper, "MONOPOLE"):
		return model.TowerTypeMacro
	case strings.Contains(upper, "MICRO"):
		return model.TowerTypeMicro
	case strings.Contains(upper, "PICO"):
		return model.TowerTypePico
	case strings.Contains(upper, "DAS"):
		return model.TowerTypeDAS
	case strings.Contains(upper, "COW"):
		return model.TowerTypeCOW
	default:
		return model.TowerTypeMacro
	}
}

// Carrier maps free-text carrier names to canonical brands. Comma-separated
// values reduce to the normalized first segment only; full multi-carrier
// decomposition is SplitCarriers, which deliberately stays a separate path
// because the tower_sites.carrier column and tower_providers rows are
// derived by different rules.
func Carrier(raw string) string {
	if raw == "" {
		return CarrierUnknown
	}
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "ghost") {
		return CarrierGhost
	}

	if idx := strings.Index(raw, ","); idx >= 0 {
		return Carrier(strings.TrimSpace(raw[:idx]))
	}

	switch {
	case strings.Contains(lower, "verizon"):
		return "Verizon"
	case strings.Contains(lower, "at&t"), strings.Contains(lower, "att"):
		return "AT&T"
	case strings.Contains(lower, "t-mobile"), strings.Contains(lower, "tmobile"):
		return "T-Mobile"
	case strings.Contains(lower, "sprint"):
		return "Sprint (T-Mobile)"
	case strings.Contains(lower, "us cellular"):
		return "US Cellular"
	case strings.Contains(lower, "dish"):
		return "Dish Network"
	case strings.Contains(lower, "amt"), strings.Contains(lower, "american tower"):
		return "American Tower"
	case strings.Contains(lower, "cci"), strings.Contains(lower, "crown castle"):
		return "Crown Castle"
	case strings.Contains(lower, "cellular one"):
		return "Cellular One"
	}

	// Unknown but real values pass through verbatim.
	return raw
}

// SplitCarriers decomposes a comma-separated carrier string into individual
// tokens for provider resolution, dropping empty tokens and the literal
// "Multi" aggregate marker.
func SplitCarriers(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "Multi" || strings.EqualFold(trimmed, SentinelUnlock) {
		return nil
	}

	var out []string
	for _, part := range strings.Split(trimmed, ",") {
		p := strings.TrimSpace(part)
		if p == "" || p == "Multi" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Phone validates a phone value. The original human formatting is preserved;
// validity is gated only on the digit count after stripping everything but
// digits and "+".
func Phone(raw string) *string {
	if raw == "" || strings.Contains(strings.ToLower(raw), SentinelUnlock) {
		return nil
	}

	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 {
		return nil
	}

	trimmed := strings.TrimSpace(raw)
	return &trimmed
}

// Email lowercases and validates an email value.
func Email(raw string) *string {
	if raw == "" || strings.Contains(strings.ToLower(raw), SentinelUnlock) {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if !strings.Contains(trimmed, "@") {
		return nil
	}
	return &trimmed
}

// Generational suffixes folded into the last name when the name has more
// than two tokens.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true,
	"sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// OwnerName splits a raw contact name into first/last/full parts. A single
// token is treated as an organization-like name (full and last only).
func OwnerName(raw string) model.OwnerNameParts {
	if raw == "" || strings.Contains(strings.ToLower(raw), SentinelUnlock) {
		return model.OwnerNameParts{}
	}

	trimmed := strings.TrimSpace(raw)
	parts := strings.Fields(trimmed)
	if len(parts) == 0 {
		return model.OwnerNameParts{}
	}

	if len(parts) == 1 {
		return model.OwnerNameParts{FullName: &trimmed, LastName: &trimmed}
	}

	first := parts[0]
	if len(parts) > 2 && nameSuffixes[strings.ToLower(parts[len(parts)-1])] {
		last := strings.Join(parts[1:len(parts)-1], " ") + " " + parts[len(parts)-1]
		return model.OwnerNameParts{FullName: &trimmed, FirstName: &first, LastName: &last}
	}

	last := strings.Join(parts[1:], " ")
	return model.OwnerNameParts{FullName: &trimmed, FirstName: &first, LastName: &last}
}

// EntityKey produces the case-normalized cache/lookup key for entity
// resolution: trimmed and upper-cased with full Unicode case mapping.
func EntityKey(name string) string {
	return upperCaser.String(strings.TrimSpace(name))
}

// StripSentinel maps empty and redacted values to absence, passing anything
// else through untouched.
func StripSentinel(raw string) *string {
	if raw == "" || strings.Contains(strings.ToLower(raw), SentinelUnlock) {
		return nil
	}
	return &raw
}

// Optional maps an empty string to nil, anything else to a pointer.
func Optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
