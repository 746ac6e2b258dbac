package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loungewatch/loungewatch/internal/config"
	"github.com/loungewatch/loungewatch/pkg/types"
)

// feedServer serves body with status and records the User-Agent it saw.
func feedServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &ua
}

func newAdapter(t *testing.T, typ, endpoint string) Adapter {
	t.Helper()
	a, err := New(config.Source{ID: typ + "-test", Type: typ, Endpoint: endpoint},
		Options{UserAgent: config.DefaultUserAgent})
	require.NoError(t, err)
	return a
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(config.Source{ID: "x", Type: "sheets", Endpoint: "http://x"}, Options{})
	require.Error(t, err)
}

func TestNewAll_PreservesOrder(t *testing.T) {
	as, err := NewAll(config.DefaultSources(), Options{})
	require.NoError(t, err)
	require.Len(t, as, 5)
	assert.Equal(t, "oriental", as[0].ID())
	assert.Equal(t, "yatakoi", as[4].ID())
	assert.Equal(t, config.TypeJIS, as[1].Type())
	assert.Equal(t, "https://jis.bar/", as[1].Endpoint())
}

func TestFetch_SetsSourceAndUserAgent(t *testing.T) {
	srv, ua := feedServer(t, http.StatusOK, `[{"m_cnt": 4, "w_cnt": "6"}]`)
	res := newAdapter(t, config.TypeXIX, srv.URL).Fetch(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, config.DefaultUserAgent, *ua)
	assert.Equal(t, "xix-test", res.SourceID)
	assert.Equal(t, []types.Record{{Name: "XIX OKAYAMA", Men: 4, Women: 6, Source: "xix"}}, res.Records)
	assert.False(t, res.FetchedAt.IsZero())
}

func TestFetch_ConnectFailure(t *testing.T) {
	a := newAdapter(t, config.TypeAlfa, "http://127.0.0.1:1")
	res := a.Fetch(context.Background())
	require.NotNil(t, res)
	require.Error(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestFetch_Non2xxResponse(t *testing.T) {
	srv, _ := feedServer(t, http.StatusForbidden, "denied")
	res := newAdapter(t, config.TypeYatakoi, srv.URL).Fetch(context.Background())

	var httpErr *HTTPError
	require.True(t, errors.As(res.Err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "HTTP 403")
	assert.Empty(t, res.Records)
}

func TestFetch_ParseFailure(t *testing.T) {
	srv, _ := feedServer(t, http.StatusOK, "<html>maintenance</html>")
	res := newAdapter(t, config.TypeXIX, srv.URL).Fetch(context.Background())
	require.Error(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestFetch_BodyTooLarge(t *testing.T) {
	big := strings.Repeat("a", maxBodySize+10)
	srv, _ := feedServer(t, http.StatusOK, big)
	res := newAdapter(t, config.TypeAlfa, srv.URL).Fetch(context.Background())
	require.Error(t, res.Err)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv, _ := feedServer(t, http.StatusOK, `{"man_num":1,"woman_num":1}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newAdapter(t, config.TypeAlfa, srv.URL).Fetch(ctx)
	require.Error(t, res.Err)
	assert.Empty(t, res.Records)
}
