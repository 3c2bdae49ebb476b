package seed

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

type memoryProjects struct {
	projects []*domain.Project
	failSlug string
}

func (m *memoryProjects) CreateProject(p *domain.Project) error {
	if p.Slug == m.failSlug {
		return errors.New("duplicate slug")
	}
	m.projects = append(m.projects, p)
	return nil
}

func TestImportProjects(t *testing.T) {
	src := `name,city,address,latitude,longitude,status,price_from,bedrooms,amenities,images
Harbor View,Sydney,1 George St,-33.86,151.20,ready,1250000.5,3,Pool | Gym,https://img/1.jpg|https://img/2.jpg
Broken,Sydney,2 George St,not-a-number,151.20,ready,100,,,
Old Town,Paris,3 Rue,48.85,2.35,demolished,100,,,
Skyline,Sydney,4 George St,-33.87,151.21,pre_sale,900000,,,
`
	store := &memoryProjects{failSlug: "skyline-sydney"}

	cnt, err := ImportProjects(store, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
	require.Len(t, store.projects, 1)

	p := store.projects[0]
	assert.Equal(t, "harbor-view-sydney", p.Slug)
	assert.Equal(t, int64(125000050), p.PriceFrom)
	assert.Equal(t, int32(3), p.Bedrooms)
	assert.Equal(t, []string{"Pool", "Gym"}, p.Amenities)
	assert.Equal(t, "https://img/1.jpg", p.CoverImage)
	assert.Equal(t, "CNY", p.Currency)
}

func TestImportProjects_MissingHeader(t *testing.T) {
	_, err := ImportProjects(&memoryProjects{}, strings.NewReader("name,city\nA,B\n"))
	assert.ErrorContains(t, err, "address")
}

func TestImportProjects_SampleData(t *testing.T) {
	store := &memoryProjects{}

	file, err := openSample()
	require.NoError(t, err)
	defer file.Close()

	cnt, err := ImportProjects(store, file)
	require.NoError(t, err)
	assert.Equal(t, 4, cnt)
	assert.Equal(t, "binjiang-one", store.projects[0].Slug)
	assert.Empty(t, store.projects[3].Images)
}

func openSample() (*os.File, error) {
	return os.Open("data/projects.csv")
}
