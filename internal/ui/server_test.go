package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/testutil"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

func setupTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	decoder := qr.NewZXingDecoder()
	s := NewServer(Config{
		Widget: widget.Options{
			Encoder:      qr.NewSkipEncoder(qr.DefaultSize, qrcode.Medium),
			Decoder:      decoder,
			FrameDecoder: decoder,
			FramePolicy:  qr.DefaultFramePolicy(),
		},
		SessionSecret: "test-secret",
		Logger:        testutil.NewTestLogger(t),
	})
	handler, err := s.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(s.Registry().Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestRoutes_GenerateAndDownload(t *testing.T) {
	ts, client := setupTestServer(t)

	resp, _ := do(t, client, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, client, http.MethodGet, ts.URL+"/qr/download", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, client, http.MethodPost, ts.URL+"/editor/mode", `{"mode":"table"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, client, http.MethodPost, ts.URL+"/editor/cells/0/0", `{"value":"a"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, client, http.MethodPost, ts.URL+"/editor/generate", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, client, http.MethodGet, ts.URL+"/qr/download", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="qrcode.png"`, resp.Header.Get("Content-Disposition"))

	text, err := qr.NewZXingDecoder().DecodeImage(context.Background(), strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, `{"columns":["Column 1","Column 2"],"rows":[["a",""]]}`, text)
}

func TestRoutes_StaticAssets(t *testing.T) {
	ts, client := setupTestServer(t)

	for _, name := range []string{"camera.js", "widget.css"} {
		resp, body := do(t, client, http.MethodGet, ts.URL+"/static/"+name, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
		assert.NotEmpty(t, body, name)
	}
}

func TestRoutes_UnknownPath(t *testing.T) {
	ts, client := setupTestServer(t)

	resp, _ := do(t, client, http.MethodGet, ts.URL+"/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	listening := make(chan string, 1)
	s := NewServer(Config{
		Port:          0,
		SessionSecret: "test-secret",
		Logger:        testutil.NewTestLogger(t),
		OnListen:      func(u string) { listening <- u },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	select {
	case url := <-listening:
		assert.True(t, strings.HasPrefix(url, "http://localhost:"))
	case <-time.After(5 * time.Second):
		t.Fatal("server did not listen")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
