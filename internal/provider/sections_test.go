package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/provider"
	"jobmate/dashboard-service/internal/scraper"
)

func embeddedProvider(t *testing.T) *provider.Provider {
	t.Helper()
	fetcher, err := scraper.NewFetcher(localOptions().FetchConfig(), nil)
	require.NoError(t, err)
	return provider.New(localOptions(), fetcher, nil, nil, nil)
}

func TestSections_DefaultOrder(t *testing.T) {
	sections := embeddedProvider(t).Sections(context.Background(), nil)
	require.Len(t, sections, 3)

	assert.Equal(t, "indeed", sections[0].Source)
	assert.Equal(t, "Indeed", sections[0].Label)
	assert.Equal(t, "glassdoor", sections[1].Source)
	assert.Equal(t, "linkedin", sections[2].Source)
	assert.Equal(t, "Linkedin", sections[2].Label)

	indeed := sections[0].Jobs
	require.Len(t, indeed, 2)
	assert.Equal(t, "Northwind Labs", indeed[0].CompanyName)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=nw001", indeed[0].ApplyURL,
		"section link prefers the section's publisher over the direct link")
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=bh002", indeed[1].ApplyURL)
	assert.Equal(t, "Indeed", indeed[1].ApplyVia)

	linkedin := sections[2].Jobs
	require.Len(t, linkedin, 1)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/bh002", linkedin[0].ApplyURL)
}

func TestSections_EmptyAndOtherSections(t *testing.T) {
	sections := embeddedProvider(t).Sections(context.Background(), []string{"monster", " ", "ZipRecruiter"})
	require.Len(t, sections, 2)

	assert.Equal(t, "monster", sections[0].Source)
	assert.NotNil(t, sections[0].Jobs)
	assert.Empty(t, sections[0].Jobs)

	zip := sections[1].Jobs
	require.Len(t, zip, 1)
	assert.Equal(t, "Tidewater Systems", zip[0].CompanyName)
	assert.Equal(t, "https://www.ziprecruiter.com/jobs/tw004", zip[0].ApplyURL)
}
