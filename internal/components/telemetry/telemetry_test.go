package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("ingest", rec)

	scoped.ReportBroken("ingestor.coerce", fmt.Errorf("bad cell"))
	scoped.ReportInfo("ingestor.no-table", 42)
	scoped.ReportCount("ingestor.rows", 7)

	broken := rec.Reports(LevelBroken)
	require.Len(t, broken, 1)
	require.Equal(t, "ingest: ingestor.coerce", broken[0].ID)

	require.True(t, rec.Has(LevelInfo, "ingestor.no-table"))
	require.False(t, rec.Has(LevelWarning, "ingestor.no-table"))

	counts := rec.Reports(LevelCount)
	require.Len(t, counts, 1)
	require.Equal(t, int64(7), counts[0].Count)
}

type memoryOutput struct {
	mutex sync.Mutex
	files map[string]string
}

func (m *memoryOutput) Write(id string, contents string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.files[id] = contents
	return nil
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer server.Close()

	rec := NewRecorder()
	out := &memoryOutput{files: map[string]string{}}

	client := resty.New()
	InstrumentResty(client, rec, out)

	res, err := client.R().SetContext(context.Background()).Get(server.URL + "/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	res, err = client.R().Get(server.URL + "/missing")
	require.NoError(t, err)
	require.True(t, res.IsError())

	require.Len(t, out.files, 2)
	require.Contains(t, out.files["1"], "<title>ok</title>")
	require.Contains(t, out.files["2"], "404")
	require.True(t, rec.Has(LevelDebug, report_resty_request))
	require.True(t, rec.Has(LevelDebug, report_resty_response))
}

func TestInstrumentRestyReportsTransportErrors(t *testing.T) {
	rec := NewRecorder()
	client := resty.New()
	InstrumentResty(client, rec, nil)

	_, err := client.R().Get("http://127.0.0.1:1/unreachable")
	require.Error(t, err)
	require.True(t, rec.Has(LevelBroken, report_resty_response))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	require.NoError(t, out.Write("1", "hello"))
	contents, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))

	// recreating the output clears earlier dumps
	_, err = NewFilesystemOutput(dir)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 0)
}

func TestSetupWithoutEndpointsIsNoop(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", OtlpConfig{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.False(t, tel.MetricsEnabled())
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "text/html")
	rendered := formatHeaders(headers)
	require.Equal(t, "Content-Type: text/html", rendered)
	require.False(t, strings.HasSuffix(rendered, "\n"))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBody(t *testing.T) {
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(nil))

	get, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	get.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(get))

	post, err := http.NewRequest(http.MethodPost, "http://example.com", strings.NewReader("runs=45"))
	require.NoError(t, err)
	require.Equal(t, "runs=45", formatRequestBody(post))
}
