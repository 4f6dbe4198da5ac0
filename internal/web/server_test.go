package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtland/datalens/internal/config"
	"github.com/holtland/datalens/internal/core"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Upload.SessionTTL = time.Minute
	cfg.Upload.PreviewRows = 100
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "text"
	return NewServer(core.NewService(cfg), cfg)
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func uploadCSV(t *testing.T, s *Server, name, content string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.NotEmpty(t, preview.SessionID)
	return preview.SessionID
}

func persist(t *testing.T, s *Server, sessionID, relation string) {
	t.Helper()
	body := `{"session_id":"` + sessionID + `","relation":"` + relation + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/persist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

const salesCSV = "region,amount\nwest,10\neast,20\nwest,30\n"

func TestUploadPersistExploreExport(t *testing.T) {
	s := testServer(t)

	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	// Relation list includes the new relation.
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/relations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sales"`)

	// Explore with a filter and aggregation.
	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/explore?group_by=region&target=amount&func=sum", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		FilteredRows int `json:"filtered_rows"`
		Grouped      *struct {
			Value string  `json:"value"`
			Rows  [][]any `json:"rows"`
		} `json:"grouped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.FilteredRows)
	require.NotNil(t, result.Grouped)
	assert.Equal(t, "sum_amount", result.Grouped.Value)
	require.Len(t, result.Grouped.Rows, 2)

	// Export the filtered table as CSV.
	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/export?filter_column=region&value=west", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="sales_filtered.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "region,amount\nwest,10\nwest,30\n", rec.Body.String())
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	s := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FILE001", resp.Code)
}

func TestUploadNoFile(t *testing.T) {
	s := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersistInvalidRelationName(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)

	body := `{"session_id":"` + sessionID + `","relation":"bad name"}`
	req := httptest.NewRequest(http.MethodPost, "/api/persist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REL001", resp.Code)
}

func TestPersistExpiredSession(t *testing.T) {
	s := testServer(t)

	body := `{"session_id":"gone","relation":"sales"}`
	req := httptest.NewRequest(http.MethodPost, "/api/persist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FILE008", resp.Code)
}

func TestExploreMissingRelation(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/relations/missing/explore", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REL002", resp.Code)
}

func TestExploreUnknownFilterColumn(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/explore?filter_column=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestColumnsEndpoint(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/relations/sales/columns", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Columns []core.ColumnProfile `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "region", resp.Columns[0].Name)
	assert.True(t, resp.Columns[1].Numeric)
}

func TestChartEndpoint(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/chart?type=bar&group_by=region&target=amount&func=sum", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestChartRejectsUnknownType(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/chart?type=donut&group_by=region&target=amount", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "QRY003", resp.Code)
}

func TestChartNonNumericTargetRendersPlaceholder(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/chart?group_by=region&target=region", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not numeric")
}

func TestHistogramEndpoint(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/histogram/amount", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Histogram of amount")

	// Text columns have no histogram; the endpoint answers a placeholder.
	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/histogram/region", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No histogram")
}

func TestCorrelationNeedsTwoNumericColumns(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/relations/sales/correlation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least two numeric columns")
}

func TestDropRelation(t *testing.T) {
	s := testServer(t)
	sessionID := uploadCSV(t, s, "sales.csv", salesCSV)
	persist(t, s, sessionID, "sales")

	rec := doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/relations/sales", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/relations/sales", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexServesDashboard(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Datalens</title>")
}
