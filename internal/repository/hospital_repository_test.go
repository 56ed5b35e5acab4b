package repository

import (
	"context"
	"testing"

	"go-leximed/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHospitalRepository_ListHospitals(t *testing.T) {
	repo := NewStaticHospitalRepository()

	hospitals, err := repo.ListHospitals(context.Background(), "cardiology")
	require.NoError(t, err)
	require.Len(t, hospitals, 3)
	assert.Equal(t, "Bangalore Multispeciality Hospital", hospitals[0].Name)
	assert.Equal(t, "https://www.google.com/maps?q=City+Care+Hospital", hospitals[1].Link)
	assert.Equal(t, "Koramangala, Bangalore", hospitals[2].Address)
	for _, h := range hospitals {
		assert.Empty(t, h.Note)
	}
}

func TestStaticHospitalRepository_ReturnsFreshCopy(t *testing.T) {
	repo := NewStaticHospitalRepository()

	first, err := repo.ListHospitals(context.Background(), "")
	require.NoError(t, err)
	first[0].Note = "annotated"

	second, err := repo.ListHospitals(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, second[0].Note)
}

func TestStaticHospitalRepository_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticHospitalRepository().ListHospitals(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewStaticHospitalRepositoryWith(nil).ListHospitals(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)

	custom, err := NewStaticHospitalRepositoryWith([]models.Hospital{}).ListHospitals(context.Background(), "x")
	assert.NoError(t, err)
	assert.Empty(t, custom)
}
