package utils

import (
	"testing"
	"time"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp := GenerateRandomOTP()
		require.Len(t, otp, 6)
		for _, c := range otp {
			assert.True(t, c >= '0' && c <= '9', otp)
		}
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, []rune(GenerateRandomPassword(12)), 12)
	assert.NotEqual(t, GenerateRandomPassword(32), GenerateRandomPassword(32))
}

func TestGenerateUnsubscribeToken(t *testing.T) {
	token, err := GenerateUnsubscribeToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Regexp(t, `^[0-9A-Za-z]+$`, token)
}

func TestProjectSlug(t *testing.T) {
	assert.Equal(t, "torre-del-parque", ProjectSlug("Torre del Parque"))
	assert.True(t, slug.IsSlug(ProjectSlug("翠湖花园 二期")))
	assert.Equal(t, "project-2024", ProjectSlug("2024"))
	assert.Equal(t, "2024-tower", ProjectSlug("2024 Tower"))
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")
	assert.Regexp(t, `^[a-z]+[0-9]{1,3}$`, username)
}

func TestGenerateRandomProject(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := GenerateRandomProject()
		require.NoError(t, ValidateProject(p))
		assert.NotEmpty(t, p.Images)
		assert.Equal(t, p.Images[0], p.CoverImage)
	}
}

func TestGenerateRandomOperation(t *testing.T) {
	for i := 0; i < 20; i++ {
		op := GenerateRandomOperation(1, 2)
		assert.NoError(t, ValidateOperation(op))
	}
}

func TestValidateProject(t *testing.T) {
	valid := func() *domain.Project {
		return &domain.Project{Slug: "torre-del-parque", Latitude: -34.6, Longitude: -58.4, PriceFrom: 100}
	}

	require.NoError(t, ValidateProject(valid()))

	cases := map[string]func(p *domain.Project){
		"bad slug":      func(p *domain.Project) { p.Slug = "Torre Del Parque" },
		"numeric slug":  func(p *domain.Project) { p.Slug = "2024" },
		"latitude":      func(p *domain.Project) { p.Latitude = 91 },
		"longitude":     func(p *domain.Project) { p.Longitude = -181 },
		"negative":      func(p *domain.Project) { p.PriceFrom = -1 },
		"negative area": func(p *domain.Project) { p.AreaFrom = -1 },
	}
	for name, mutate := range cases {
		p := valid()
		mutate(p)
		assert.Error(t, ValidateProject(p), name)
	}
}

func TestValidateOperation(t *testing.T) {
	now := time.Now()

	assert.NoError(t, ValidateOperation(&domain.Operation{Amount: 1, Status: domain.OperationStatusOpen}))
	assert.NoError(t, ValidateOperation(&domain.Operation{Amount: 1, Status: domain.OperationStatusClosed, ClosedAt: &now}))

	assert.Error(t, ValidateOperation(&domain.Operation{Amount: 0, Status: domain.OperationStatusOpen}))
	assert.Error(t, ValidateOperation(&domain.Operation{Amount: 1, Status: domain.OperationStatusClosed}))
	assert.Error(t, ValidateOperation(&domain.Operation{Amount: 1, Status: domain.OperationStatusCancelled, ClosedAt: &now}))
}
