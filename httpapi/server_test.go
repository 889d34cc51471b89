package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleHealthz(t *testing.T) {
	r := require.New(t)

	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.handleHealthz(rec, req)

	r.Equal(http.StatusOK, rec.Code)
	r.Equal("ok", rec.Body.String())
}

func TestWriteJSON(t *testing.T) {
	r := require.New(t)

	rec := httptest.NewRecorder()
	writeJSON(rec, map[string]string{"hello": "world"})

	r.Equal("application/json", rec.Header().Get("Content-Type"))
	r.JSONEq(`{"hello":"world"}`, rec.Body.String())
}
