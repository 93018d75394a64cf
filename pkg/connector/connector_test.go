package connector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(baseURL string, timeout time.Duration) *Connector {

	config := &configs.Config{
		Sonar: configs.SonarConfig{
			URL:     baseURL + "/",
			Token:   "squ_secret",
			Timeout: timeout,
		},
	}

	return New(config, zap.NewExample())
}

func TestConnectorSendsBearerToken(t *testing.T) {

	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := newTestConnector(ts.URL, time.Second)

	body, err := c.Get(context.Background(), "/api/rules/search", url.Values{"p": []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "Bearer squ_secret", got.Header.Get("Authorization"))
	assert.Equal(t, "/api/rules/search", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("p"))
	assert.Equal(t, ts.URL, c.GetBaseURL())
}

func TestConnectorNon2xx(t *testing.T) {

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such profile", http.StatusNotFound)
	}))
	defer ts.Close()

	c := newTestConnector(ts.URL, time.Second)

	_, err := c.Post(context.Background(), "/api/qualityprofiles/activate_rule", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, http.MethodPost, apiErr.Method)
	assert.Equal(t, "no such profile", apiErr.Body)
	assert.False(t, apiErr.Transport())
}

func TestConnectorTimeout(t *testing.T) {

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer ts.Close()

	c := newTestConnector(ts.URL, 50*time.Millisecond)

	_, err := c.Get(context.Background(), "/slow", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Transport())
	assert.NotNil(t, errors.Unwrap(apiErr))
}

func TestConnectorConnectionRefused(t *testing.T) {

	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	c := newTestConnector(addr, time.Second)

	_, err := c.Get(context.Background(), "/api/rules/search", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Transport())
}
