package handlers

import (
	"net/http"
	"testing"
	"time"

	"chat-realtime-api/internal/models"
	"chat-realtime-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSongEndpoints(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedUser(t, env.db, "u-1", "alice")
	now := time.Now()
	testutil.SeedSong(t, env.db, "s-1", "One", models.CategoryPop, now)
	testutil.SeedSong(t, env.db, "s-2", "Two", models.CategoryJazz, now.Add(-time.Minute))
	tok := env.token(t, "u-1", "alice")

	w := env.do(t, http.MethodGet, "/api/songs", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, decodeBody[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = env.do(t, http.MethodGet, "/api/songs/random?count=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, decodeBody[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = env.do(t, http.MethodGet, "/api/songs/random?count=x", tok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/songs/category/jazz", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Two")
	require.NotContains(t, w.Body.String(), "One")

	w = env.do(t, http.MethodGet, "/api/songs/category/polka", tok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
