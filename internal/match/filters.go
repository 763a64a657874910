package match

import (
	"strings"

	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// Excluded reports whether a role is dropped by the engineer's learned
// exclusion rules, with the first matching rule. Filters run before any
// scoring call so excluded pairs never cost an inference.
func Excluded(prefs types.MatchingPreferences, role *store.RoleCandidate) (bool, string) {
	if v, ok := matchAny(prefs.ExcludedLocations, role.Location, containsFold); ok {
		return true, "location: " + v
	}
	if v, ok := matchAny(prefs.ExcludedCompanies, role.CompanyName, equalFold); ok {
		return true, "company: " + v
	}
	if v, ok := matchAny(prefs.ExcludedCompanyDomains, role.CompanyDomain, equalFold); ok {
		return true, "company domain: " + v
	}
	searchText := role.SearchText()
	for _, kw := range prefs.ExcludedKeywords {
		if kw != "" && strings.Contains(searchText, strings.ToLower(kw)) {
			return true, "keyword: " + kw
		}
	}
	return false, ""
}

func matchAny(rules []string, value string, match func(rule, value string) bool) (string, bool) {
	if value == "" {
		return "", false
	}
	for _, rule := range rules {
		if rule != "" && match(rule, value) {
			return rule, true
		}
	}
	return "", false
}

func equalFold(rule, value string) bool {
	return strings.EqualFold(strings.TrimSpace(rule), strings.TrimSpace(value))
}

func containsFold(rule, value string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(rule)))
}
