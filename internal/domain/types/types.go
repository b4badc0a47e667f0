// Package types contains common types shared across the pipeline.
package types

import "strings"

// Region identifies a touring market grouping. Region values map to
// the country codes used when filtering provider event searches.
type Region string

// Known region aliases.
const (
	RegionNA     Region = "NA"
	RegionUS     Region = "US"
	RegionCA     Region = "CA"
	RegionUK     Region = "UK"
	RegionGB     Region = "GB"
	RegionIE     Region = "IE"
	RegionUKIE   Region = "UKIE"
	RegionEU     Region = "EU"
	RegionGlobal Region = "GLOBAL"
)

// DefaultRegion is applied when a caller does not name a region.
const DefaultRegion = RegionNA

// anyRegion is the key segment used when no region was supplied.
const anyRegion = "ANY"

// Cache key prefixes. One prefix per concern keeps keys from
// colliding inside a shared store.
const (
	intelKeyPrefix   = "intel"
	heatmapKeyPrefix = "heatmap"
	resolveKeyPrefix = "resolve"
	keySeparator     = ":"
)

// ParseRegion canonicalizes a raw region string, folding the spelled
// out names users type ("north america", "united kingdom") onto the
// short aliases. Unknown values pass through uppercased so
// CountryCodes can apply the default markets.
func ParseRegion(raw string) Region {
	r := strings.ToUpper(strings.TrimSpace(raw))
	switch r {
	case "NORTH AMERICA":
		return RegionNA
	case "USA", "UNITED STATES":
		return RegionUS
	case "CANADA":
		return RegionCA
	case "GB", "UNITED KINGDOM":
		return RegionUK
	case "IRELAND":
		return RegionIE
	case "UK+IE":
		return RegionUKIE
	case "EUROPE":
		return RegionEU
	case "WORLD", "WW":
		return RegionGlobal
	}
	return Region(r)
}

// String returns the region as a plain string.
func (r Region) String() string {
	return string(r)
}

// CountryCodes returns the provider country codes covered by the
// region. A nil slice means no country filter at all. Unknown or
// empty regions fall back to the North American markets.
func (r Region) CountryCodes() []string {
	switch r {
	case RegionNA:
		return []string{"US", "CA"}
	case RegionUS:
		return []string{"US"}
	case RegionCA:
		return []string{"CA"}
	case RegionUK, RegionGB:
		return []string{"GB"}
	case RegionIE:
		return []string{"IE"}
	case RegionUKIE:
		return []string{"GB", "IE"}
	case RegionEU:
		return []string{"GB", "IE", "DE", "FR", "NL", "SE"}
	case RegionGlobal:
		return nil
	default:
		return []string{"US", "CA"}
	}
}

// Global reports whether the region disables country filtering.
func (r Region) Global() bool {
	return r == RegionGlobal
}

// Label returns the human readable market name used in report notes.
func (r Region) Label() string {
	switch r {
	case RegionUS:
		return "United States"
	case RegionCA:
		return "Canada"
	case RegionUK, RegionGB:
		return "United Kingdom"
	case RegionIE:
		return "Ireland"
	case RegionUKIE:
		return "UK & Ireland"
	case RegionEU:
		return "Europe (major markets)"
	case RegionGlobal:
		return "Global"
	default:
		return "North America (US/CA)"
	}
}

// NormalizeQuery lowercases an artist query and collapses internal
// whitespace so equivalent queries share one cache identity.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// IdentityKey builds the cache key for a full intel report.
func IdentityKey(query string, region Region) string {
	return intelKeyPrefix + keySeparator + NormalizeQuery(query) + keySeparator + regionSegment(region)
}

// HeatmapKey builds the cache key for a heatmap result.
func HeatmapKey(query string, region Region) string {
	return heatmapKeyPrefix + keySeparator + NormalizeQuery(query) + keySeparator + regionSegment(region)
}

// ResolveKey builds the cache key for a resolved artist identity.
func ResolveKey(query string) string {
	return resolveKeyPrefix + keySeparator + NormalizeQuery(query)
}

func regionSegment(region Region) string {
	if region == "" {
		return anyRegion
	}
	return string(region)
}
