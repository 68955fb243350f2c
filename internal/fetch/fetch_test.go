package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/fetch"
)

func serve(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestGet_Success(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"data":[1,2]}`)

	got, err := fetch.Get(context.Background(), srv.Client(), srv.URL+"/search", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[1,2]}`, string(got))
}

func TestGet_SendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := fetch.Get(context.Background(), srv.Client(), srv.URL, map[string]string{"X-RapidAPI-Key": "secret"})
	require.NoError(t, err)
}

func TestGet_InvalidJSON(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `<html>oops</html>`)

	_, err := fetch.Get(context.Background(), srv.Client(), srv.URL, nil)

	var fe *fetch.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fetch.KindInvalidJSON, fe.Kind)
	assert.Equal(t, http.StatusOK, fe.Status)
	assert.Equal(t, srv.URL, fe.URL)
	assert.Nil(t, fe.Payload)
}

func TestGet_InvalidJSONWinsOverBadStatus(t *testing.T) {
	srv, _ := serve(t, http.StatusBadGateway, `upstream down`)

	_, err := fetch.Get(context.Background(), srv.Client(), srv.URL, nil)

	var fe *fetch.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fetch.KindInvalidJSON, fe.Kind)
	assert.Equal(t, http.StatusBadGateway, fe.Status)
}

func TestGet_RequestFailedCarriesPayload(t *testing.T) {
	srv, hits := serve(t, http.StatusTooManyRequests, `{"message":"quota exceeded"}`)

	_, err := fetch.Get(context.Background(), srv.Client(), srv.URL, nil)

	var fe *fetch.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fetch.KindRequestFailed, fe.Kind)
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.JSONEq(t, `{"message":"quota exceeded"}`, string(fe.Payload))
	assert.Contains(t, fe.Error(), "429")
	assert.EqualValues(t, 1, atomic.LoadInt32(hits), "no retries")
}

func TestGet_TransportError(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	_, err := fetch.Get(context.Background(), http.DefaultClient, url, nil)
	require.Error(t, err)

	var fe *fetch.Error
	assert.False(t, errors.As(err, &fe), "transport failures are not classified")
}
