// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/testutil"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

// TestFixture holds all dependencies needed for UI handler tests. It acts
// as one browser: the session cookie set by a handler is sent with every
// later request.
type TestFixture struct {
	Registry     *session.Registry
	SessionStore *sessions.CookieStore

	t       *testing.T
	cookies []*http.Cookie
}

// SetupTestFixture creates a registry whose widgets use the production
// encoder and decoders.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	store := NewTestSessionStore()
	decoder := qr.NewZXingDecoder()

	registry := session.NewRegistry(session.Config{
		Store: store,
		TTL:   time.Minute,
		Widget: widget.Options{
			Encoder:      qr.NewSkipEncoder(qr.DefaultSize, qrcode.Medium),
			Decoder:      decoder,
			FrameDecoder: decoder,
			FramePolicy:  qr.DefaultFramePolicy(),
			Logger:       logger,
		},
		Logger: logger,
	})
	t.Cleanup(registry.Close)

	return &TestFixture{
		Registry:     registry,
		SessionStore: store,
		t:            t,
	}
}

// NewBrowser returns a fixture sharing the registry but without a session
// cookie, as a second browser would.
func (f *TestFixture) NewBrowser() *TestFixture {
	return &TestFixture{
		Registry:     f.Registry,
		SessionStore: f.SessionStore,
		t:            f.t,
	}
}

// NewRequest builds a request carrying the fixture's session cookie.
func (f *TestFixture) NewRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	return req
}

// SignalsRequest builds a datastar POST carrying signals as its JSON body.
func (f *TestFixture) SignalsRequest(target string, signals any) *http.Request {
	f.t.Helper()
	body, err := json.Marshal(signals)
	require.NoError(f.t, err)

	req := f.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}

// MultipartRequest builds a POST uploading data as the file field.
func (f *TestFixture) MultipartRequest(target, field, filename string, data []byte) *http.Request {
	f.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(f.t, err)
	_, err = part.Write(data)
	require.NoError(f.t, err)
	require.NoError(f.t, mw.Close())

	req := f.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// Do runs handler and keeps any session cookie it sets.
func (f *TestFixture) Do(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return rec
}

// Entry returns the fixture browser's widget entry, creating it if needed.
func (f *TestFixture) Entry() *session.Entry {
	f.t.Helper()
	rec := httptest.NewRecorder()
	e, err := f.Registry.Lookup(rec, f.NewRequest(http.MethodGet, "/", nil))
	require.NoError(f.t, err)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return e
}

// RequestWithPathParams wraps a request with chi URL params given as
// key, value pairs.
func RequestWithPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout released at
// the end of the test.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
