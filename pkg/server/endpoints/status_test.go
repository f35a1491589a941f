package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	srv, stores := newTestServer(t)

	stores.health.On("CheckConnectivity").Return(nil)

	recorder := doJSON(t, srv.Router, "GET", "/status", "", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response StatusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Empty(t, response.Error)
}

func TestStatusDatabaseDown(t *testing.T) {
	srv, stores := newTestServer(t)

	stores.health.On("CheckConnectivity").Return(errors.New("dial tcp: connection refused"))

	recorder := doJSON(t, srv.Router, "GET", "/status", "", nil)

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var response StatusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "database connectivity check failed", response.Error)
}
