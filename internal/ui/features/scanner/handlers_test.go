package scanner

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/testutil"
	"github.com/leapstack-labs/qrsheet/internal/ui/features"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Registry, DefaultMaxUploadBytes, testutil.NewTestLogger(t)), fixture
}

// =============================================================================
// Upload
// =============================================================================

func TestUpload_Tabular(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	payload := `{"columns":["Name","Qty"],"rows":[["apple","3"]]}`

	req := fixture.MultipartRequest("/scan/upload", "image", "code.png", testutil.QRPNG(t, payload))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:"))
	assert.Contains(t, body, "Scanned Result:")
	assert.Contains(t, body, "scan-table")
	assert.Contains(t, body, "<td>apple</td>")

	result := fixture.Entry().Widget.Snapshot().Result
	assert.Equal(t, payload, result.Raw)
	require.NotNil(t, result.Table)
}

func TestUpload_PlainText(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.MultipartRequest("/scan/upload", "image", "code.png", testutil.QRPNG(t, "just text"))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "just text")
	assert.NotContains(t, rec.Body.String(), "scan-table")
}

func TestUpload_NoCodeShowsSentinel(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.MultipartRequest("/scan/upload", "image", "blank.png", testutil.BlankPNG(t))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No QR code found in image.")
	assert.Nil(t, fixture.Entry().Widget.Snapshot().Result.Table)
}

func TestUpload_NotAnImageShowsSentinel(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.MultipartRequest("/scan/upload", "image", "notes.txt", []byte("hello"))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No QR code found in image.")
}

func TestUpload_MissingFile(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.MultipartRequest("/scan/upload", "other", "a.png", testutil.BlankPNG(t))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := NewHandlers(fixture.Registry, 512, testutil.NewTestLogger(t))

	req := fixture.MultipartRequest("/scan/upload", "image", "big.png", make([]byte, 4096))
	rec := fixture.Do(h.Upload, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, fixture.Entry().Widget.Snapshot().Result.Visible)
}

// =============================================================================
// Camera
// =============================================================================

func TestStartStop(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.Start, fixture.NewRequest(http.MethodPost, "/scan/start", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-scanning")
	assert.Contains(t, rec.Body.String(), "Stop Scanning")
	assert.True(t, fixture.Entry().Widget.Snapshot().Scanning)

	rec = fixture.Do(h.Stop, fixture.NewRequest(http.MethodPost, "/scan/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data-scanning")
	assert.False(t, fixture.Entry().Widget.Snapshot().Scanning)
}

func TestPushFrame_WithoutSession(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.MultipartRequest("/scan/frames", "frame", "f.png", testutil.BlankPNG(t))
	rec := fixture.Do(h.PushFrame, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPushFrame_NotAnImage(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Do(h.Start, fixture.NewRequest(http.MethodPost, "/scan/start", nil))

	req := fixture.MultipartRequest("/scan/frames", "frame", "f.png", []byte("garbage"))
	rec := fixture.Do(h.PushFrame, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, fixture.Entry().Widget.Snapshot().Scanning, "bad frames do not end the session")
}

func TestPushFrame_MatchEndsSession(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Do(h.Start, fixture.NewRequest(http.MethodPost, "/scan/start", nil))

	blank := fixture.Do(h.PushFrame, fixture.MultipartRequest("/scan/frames", "frame", "f.png", testutil.BlankPNG(t)))
	assert.Equal(t, http.StatusAccepted, blank.Code)

	code := fixture.Do(h.PushFrame, fixture.MultipartRequest("/scan/frames", "frame", "f.png", testutil.QRPNG(t, "x")))
	assert.Equal(t, http.StatusAccepted, code.Code)

	w := fixture.Entry().Widget
	require.Eventually(t, func() bool {
		return !w.Snapshot().Scanning
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "x", w.Snapshot().Result.Raw)

	late := fixture.Do(h.PushFrame, fixture.MultipartRequest("/scan/frames", "frame", "f.png", testutil.BlankPNG(t)))
	assert.Equal(t, http.StatusConflict, late.Code)
}
