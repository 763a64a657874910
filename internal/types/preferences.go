package types

import "strings"

// MatchingPreferences are an engineer's learned exclusion rules. Entries are
// deduplicated case-insensitively; original casing of the first entry wins.
type MatchingPreferences struct {
	ExcludedLocations      []string `json:"excluded_locations"`
	ExcludedCompanies      []string `json:"excluded_companies"`
	ExcludedCompanyDomains []string `json:"excluded_company_domains"`
	ExcludedKeywords       []string `json:"excluded_keywords"`
}

// AddLocation appends a location exclusion, reporting whether it was new.
func (p *MatchingPreferences) AddLocation(v string) bool {
	var added bool
	p.ExcludedLocations, added = appendUnique(p.ExcludedLocations, v)
	return added
}

// AddCompany appends a company-name exclusion, reporting whether it was new.
func (p *MatchingPreferences) AddCompany(v string) bool {
	var added bool
	p.ExcludedCompanies, added = appendUnique(p.ExcludedCompanies, v)
	return added
}

// AddCompanyDomain appends a company-domain exclusion, reporting whether it
// was new.
func (p *MatchingPreferences) AddCompanyDomain(v string) bool {
	var added bool
	p.ExcludedCompanyDomains, added = appendUnique(p.ExcludedCompanyDomains, v)
	return added
}

// AddKeyword appends a keyword exclusion, reporting whether it was new.
func (p *MatchingPreferences) AddKeyword(v string) bool {
	var added bool
	p.ExcludedKeywords, added = appendUnique(p.ExcludedKeywords, v)
	return added
}

// Remove deletes a value (case-insensitive) from every exclusion list,
// reporting whether anything was removed. This backs the explicit
// preference-removal action.
func (p *MatchingPreferences) Remove(v string) bool {
	removed := false
	p.ExcludedLocations, removed = removeFold(p.ExcludedLocations, v, removed)
	p.ExcludedCompanies, removed = removeFold(p.ExcludedCompanies, v, removed)
	p.ExcludedCompanyDomains, removed = removeFold(p.ExcludedCompanyDomains, v, removed)
	p.ExcludedKeywords, removed = removeFold(p.ExcludedKeywords, v, removed)
	return removed
}

func appendUnique(list []string, v string) ([]string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return list, false
	}
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list, false
		}
	}
	return append(list, v), true
}

func removeFold(list []string, v string, already bool) ([]string, bool) {
	out := list[:0]
	removed := already
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}
