package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/informaticaucm/seguimiento-api/pkg/response"
)

func performResolveRooms(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewPresenceHandler(nil)
	router := gin.New()
	router.POST("/teachers/:id/rooms", handler.ResolveRooms)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestResolveRoomsRejectsNonPositiveID(t *testing.T) {
	w := performResolveRooms(t, "/teachers/0/rooms", gin.H{"mode": "habitual"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performResolveRooms(t, "/teachers/abc/rooms", gin.H{"mode": "habitual"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveRoomsRejectsUnknownMode(t *testing.T) {
	w := performResolveRooms(t, "/teachers/3/rooms", gin.H{"mode": "weekend"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
}

func TestPresenceRejectsMalformedInstant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPresenceHandler(nil)
	router := gin.New()
	router.GET("/teachers/:id/presence", handler.Presence)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/teachers/3/presence?at=yesterday", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
