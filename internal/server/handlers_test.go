package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosurv/sitecal/internal/config"
)

func newTestServer() *http.ServeMux {
	s := NewServer(config.ServerConfig{CORSOrigin: "*", MaxUploadMB: 16})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func multipartRequest(t *testing.T, localCSV, globalCSV string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if localCSV != "" {
		fw, err := mw.CreateFormFile("local_csv", "local.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(localCSV))
		require.NoError(t, err)
	}
	if globalCSV != "" {
		fw, err := mw.CreateFormFile("global_csv", "global.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(globalCSV))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/calibrate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const (
	validLocalCSV = "Point,Easting,Northing,Elevation\n" +
		"P1,0,0,10\n" +
		"P2,0,110,10\n" +
		"P3,100,0,10\n"

	// A triangle around (-24, -69); projects to roughly 100 m legs.
	validGlobalCSV = "Point,Latitude,Longitude,EllipsoidalHeight\n" +
		"P1,-24.0,-69.0,40\n" +
		"P2,-23.999,-69.0,40\n" +
		"P3,-24.0,-68.999,40\n"

	// All points on one meridian: projected collinear.
	collinearGlobalCSV = "Point,Latitude,Longitude,EllipsoidalHeight\n" +
		"P1,-24.0,-69.0,40\n" +
		"P2,-24.001,-69.0,40\n" +
		"P3,-24.002,-69.0,40\n"
)

func TestHealthEndpoint(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestCalibrateSuccess(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, validGlobalCSV, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CalibrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Residuals, 3)
	assert.Equal(t, "P1", resp.Residuals[0].Point)
	assert.Positive(t, resp.Parameters.Horizontal.Scale)
	assert.Contains(t, resp.Report, "# Site Calibration Report")
	assert.NotEmpty(t, resp.Statistics.WorstPoint)
}

func TestCalibrateTooFewCommonPoints(t *testing.T) {
	mux := newTestServer()

	local := "Point,Easting,Northing\nP1,0,0\n"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, local, validGlobalCSV, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "common points")
}

func TestCalibrateCollinearPoints(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, collinearGlobalCSV, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "collinear")
}

func TestCalibrateMissingUpload(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, "", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "global_csv")
}

func TestCalibrateUnknownMethod(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, validGlobalCSV, map[string]string{"method": "helmert7"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown calibration method")
}

func TestCalibratePartialLTMParams(t *testing.T) {
	mux := newTestServer()

	fields := map[string]string{
		"method":           "ltm",
		"central_meridian": "-72",
		"scale_factor":     "0.9996",
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, validGlobalCSV, fields))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "all projection parameters are required")
}

func TestCalibrateLTMMethod(t *testing.T) {
	mux := newTestServer()

	fields := map[string]string{
		"method":             "ltm",
		"central_meridian":   "-69",
		"latitude_of_origin": "-24",
		"scale_factor":       "1",
		"false_easting":      "0",
		"false_northing":     "0",
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, validLocalCSV, validGlobalCSV, fields))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCalibrateMethodNotAllowed(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calibrate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBadCSVUpload(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "Point,Easting\nP1,1\n", validGlobalCSV, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "local_csv")
}

func TestCORSPreflight(t *testing.T) {
	mux := newTestServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/calibrate", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
