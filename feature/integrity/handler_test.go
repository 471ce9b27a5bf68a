package integrity_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"bucket-manager/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleIntegrityCheck(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		reg, clients := buildRegistry(t, "media")
		clients["media"].On("BucketExists", mock.Anything, "media-bucket").Return(true, nil)
		clients["media"].On("ListObjects", mock.Anything, "media-bucket", mock.Anything).Return(listing())

		app := fiber.New()
		feature := integrity.NewFeature(reg, zap.NewNop())
		assert.Equal(t, "integrity", feature.Name())
		assert.True(t, feature.IsEnabled())
		require.NoError(t, feature.Load(app))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var report integrity.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, integrity.StatusOK, report.Status)
		assert.Len(t, report.Buckets, 1)
	})

	t.Run("Degraded", func(t *testing.T) {
		reg, clients := buildRegistry(t, "media")
		clients["media"].On("BucketExists", mock.Anything, "media-bucket").Return(false, assert.AnError)

		app := fiber.New()
		require.NoError(t, integrity.NewFeature(reg, nil).Load(app))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestHandleBucketCheck(t *testing.T) {
	reg, clients := buildRegistry(t, "media")
	clients["media"].On("BucketExists", mock.Anything, "media-bucket").Return(true, nil)
	clients["media"].On("ListObjects", mock.Anything, "media-bucket", mock.Anything).Return(listing())

	app := fiber.New()
	require.NoError(t, integrity.NewFeature(reg, nil).Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/media", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
