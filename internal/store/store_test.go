package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matchforge/matchforge/internal/types"
)

func TestEngineerLinks(t *testing.T) {
	e := &Engineer{
		CodeHostURL: "https://github.test/jane",
		ResumeURL:   "https://cdn.test/jane.pdf",
	}
	assert.Equal(t, []string{"https://github.test/jane", "https://cdn.test/jane.pdf"}, e.Links())

	assert.Empty(t, (&Engineer{}).Links())
}

func TestCompanyCrawlLinks(t *testing.T) {
	c := &Company{WebsiteURL: "https://acme.test", CareersURL: "https://acme.test/careers"}
	assert.Len(t, c.CrawlLinks(), 2)

	c = &Company{CareersURL: "https://acme.test/careers"}
	assert.Equal(t, []string{"https://acme.test/careers"}, c.CrawlLinks())
}

func TestRoleSearchText(t *testing.T) {
	r := &Role{
		Title:         "Senior Platform Engineer",
		SourceContent: "On-call rotation required.",
		BeautifiedJD: &types.BeautifiedJD{
			Requirements: map[string]string{"kubernetes": "Kubernetes at scale"},
		},
	}
	text := r.SearchText()
	assert.Contains(t, text, "senior platform engineer")
	assert.Contains(t, text, "on-call rotation")
	assert.Contains(t, text, "kubernetes at scale")

	// No beautified description yet.
	bare := &Role{Title: "SRE"}
	assert.Contains(t, bare.SearchText(), "sre")
}

func TestMarshalJSONB(t *testing.T) {
	v, err := marshalJSONB(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = marshalJSONB((*types.DNA)(nil))
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = marshalJSONB(&types.DNA{TopSkills: []string{"go"}})
	assert.NoError(t, err)
	assert.Contains(t, string(v.([]byte)), "go")
}

func TestUnmarshalJSONB(t *testing.T) {
	var dna types.DNA
	assert.NoError(t, unmarshalJSONB(nil, &dna))
	assert.Empty(t, dna.TopSkills)

	assert.NoError(t, unmarshalJSONB([]byte(`{"top_skills":["go","postgres"]}`), &dna))
	assert.Equal(t, []string{"go", "postgres"}, dna.TopSkills)
}
