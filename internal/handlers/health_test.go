package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibecurator/internal/audio"
	"vibecurator/internal/cache"
	"vibecurator/internal/testutil"
	"vibecurator/internal/vocab"
)

func healthRouter(state HealthState) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler(state).Check)
	return router
}

func testVocabulary(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New([]string{"1", "2"}, []float32{1, 0, 0, 1}, 2)
	require.NoError(t, err)
	return v
}

func testBundle(t *testing.T, modelType string) *audio.Bundle {
	t.Helper()
	b, err := audio.New([]int64{1, 2}, []float32{1, 0, 0, 1}, 2, modelType)
	require.NoError(t, err)
	return b
}

func TestHealthHandler_AllResourcesLoaded(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	state := HealthState{
		EngineVersion: "stage3_v1_myna",
		AudioModel:    "myna",
		DemoMode:      false,
		Catalog: testutil.LoadCatalogue(t, []map[string]any{
			testutil.TrackRecord(1, "One", "Artist A", "GN0100", 11),
			testutil.TrackRecord(2, "Two", "Artist B", "GN0200", 12),
		}),
		AudioMeta: testutil.LoadCatalogue(t, []map[string]any{
			testutil.TrackRecord(1, "One", "Artist A", "GN0100", 11),
		}),
		Vocab:  testVocabulary(t),
		Bundle: testBundle(t, "myna"),
		Cache:  mem,
	}

	helper := testutil.NewHTTPTestHelper(t, healthRouter(state))
	rec := helper.GetJSON("/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	helper.DecodeJSON(rec, &resp)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "stage3_v1_myna", resp.EngineVersion)
	assert.Equal(t, "myna", resp.AudioModel)
	assert.False(t, resp.DemoMode)
	assert.True(t, resp.MetaFullLoaded)
	assert.Equal(t, 2, resp.MetaFullCount)
	assert.True(t, resp.MetaAudioLoaded)
	assert.Equal(t, 1, resp.MetaAudioCount)
	assert.True(t, resp.Item2VecLoaded)
	assert.True(t, resp.AudioLoaded)
	require.NotNil(t, resp.AudioModelType)
	assert.Equal(t, "myna", *resp.AudioModelType)
	assert.True(t, resp.RedisConnected)
}

func TestHealthHandler_DegradedWithoutCatalogue(t *testing.T) {
	state := HealthState{
		EngineVersion: "stage3_v1_myna",
		AudioModel:    "myna",
		DemoMode:      true,
	}

	helper := testutil.NewHTTPTestHelper(t, healthRouter(state))
	rec := helper.GetJSON("/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	helper.DecodeJSON(rec, &resp)

	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.DemoMode)
	assert.False(t, resp.MetaFullLoaded)
	assert.Zero(t, resp.MetaFullCount)
	assert.False(t, resp.MetaAudioLoaded)
	assert.False(t, resp.Item2VecLoaded)
	assert.False(t, resp.AudioLoaded)
	assert.Nil(t, resp.AudioModelType)
	assert.False(t, resp.RedisConnected)
}

func TestHealthHandler_AudioModelTypeNullWithoutBundle(t *testing.T) {
	state := HealthState{
		EngineVersion: "stage3_v1_cnn",
		AudioModel:    "cnn",
		Catalog: testutil.LoadCatalogue(t, []map[string]any{
			testutil.TrackRecord(1, "One", "Artist A", "GN0100", 11),
		}),
	}

	helper := testutil.NewHTTPTestHelper(t, healthRouter(state))
	rec := helper.GetJSON("/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	helper.DecodeJSON(rec, &raw)

	v, present := raw["audio_model_type"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestHealthHandler_RedisDown(t *testing.T) {
	mc := &testutil.MockCache{}
	mc.On("Health", mock.Anything).Return(assert.AnError)

	state := HealthState{
		EngineVersion: "stage3_v1_myna",
		AudioModel:    "myna",
		Catalog: testutil.LoadCatalogue(t, []map[string]any{
			testutil.TrackRecord(1, "One", "Artist A", "GN0100", 11),
		}),
		Cache: mc,
	}

	helper := testutil.NewHTTPTestHelper(t, healthRouter(state))
	rec := helper.GetJSON("/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	helper.DecodeJSON(rec, &resp)

	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.RedisConnected)
	mc.AssertExpectations(t)
}
