package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingPreferences_AddLocation_DedupCaseInsensitive(t *testing.T) {
	var p MatchingPreferences

	assert.True(t, p.AddLocation("Austin, TX"))
	assert.False(t, p.AddLocation("austin, tx"))
	assert.False(t, p.AddLocation("AUSTIN, TX"))
	assert.Equal(t, []string{"Austin, TX"}, p.ExcludedLocations)
}

func TestMatchingPreferences_AddIgnoresBlank(t *testing.T) {
	var p MatchingPreferences

	assert.False(t, p.AddCompanyDomain(""))
	assert.False(t, p.AddCompanyDomain("   "))
	assert.Empty(t, p.ExcludedCompanyDomains)
}

func TestMatchingPreferences_AddEachList(t *testing.T) {
	var p MatchingPreferences

	assert.True(t, p.AddCompany("Acme Corp"))
	assert.True(t, p.AddCompanyDomain("acme.example"))
	assert.True(t, p.AddKeyword("blockchain"))
	assert.False(t, p.AddKeyword("Blockchain"))

	assert.Len(t, p.ExcludedCompanies, 1)
	assert.Len(t, p.ExcludedCompanyDomains, 1)
	assert.Len(t, p.ExcludedKeywords, 1)
}

func TestMatchingPreferences_Remove(t *testing.T) {
	p := MatchingPreferences{
		ExcludedLocations:      []string{"Austin, TX", "Remote"},
		ExcludedCompanyDomains: []string{"acme.example"},
	}

	assert.True(t, p.Remove("austin, tx"))
	assert.Equal(t, []string{"Remote"}, p.ExcludedLocations)
	assert.Equal(t, []string{"acme.example"}, p.ExcludedCompanyDomains)

	assert.False(t, p.Remove("nowhere"))
}
