package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geosurv/sitecal/internal/calibration"
	"github.com/geosurv/sitecal/internal/ingest"
	"github.com/geosurv/sitecal/internal/points"
	"github.com/geosurv/sitecal/internal/projection"
	"github.com/geosurv/sitecal/internal/report"
	"github.com/geosurv/sitecal/internal/version"
)

// SetupRoutes registers all endpoints on the given mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/calibrate", s.corsMiddleware(s.calibrateHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// calibrateHandler runs the full calibration pipeline on two uploaded
// CSVs: ingest, project, match, validate, train, report.
func (s *Server) calibrateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(s.maxUploadMB << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	methodName := r.FormValue("method")
	if methodName == "" {
		methodName = string(calibration.MethodTBC)
	}
	method, err := calibration.ParseMethod(methodName)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	local, err := readUploadedLocal(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	global, err := readUploadedGlobal(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ltm, err := ltmParamsFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	proj, err := projection.ForMethod(string(method), ltm)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	projected, err := proj.Project(global)
	if err != nil {
		s.recordCalibration(method, "invalid_input")
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	matched := points.Match(local, projected)
	controlPointCount.Observe(float64(len(matched)))

	if err := calibration.Validate(matched); err != nil {
		s.recordCalibration(method, validationStatus(err))
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	model, err := calibration.Train(matched)
	if err != nil {
		s.recordCalibration(method, "numerical_error")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	calibrationDuration.WithLabelValues(string(method)).Observe(time.Since(start).Seconds())
	s.recordCalibration(method, "ok")

	s.writeJSON(w, http.StatusOK, buildCalibrationResponse(model, method))
}

func buildCalibrationResponse(model *calibration.Model, method calibration.Method) CalibrationResponse {
	h := model.Horizontal()
	v := model.Vertical()
	residuals := model.Residuals()
	stats := report.Statistics(residuals)

	resp := CalibrationResponse{
		Parameters: CalibrationParameters{
			Horizontal: HorizontalParameters{
				A: h.A, B: h.B, TE: h.TE, TN: h.TN,
				Scale: h.Scale(), Rotation: h.Rotation(),
			},
			Vertical: VerticalParameters{
				VerticalShift: v.Shift,
				SlopeNorth:    v.SlopeNorth,
				SlopeEast:     v.SlopeEast,
				CentroidNorth: v.CentroidNorth,
				CentroidEast:  v.CentroidEast,
			},
		},
		Residuals:  make([]ResidualPoint, len(residuals)),
		Statistics: StatisticsSummary{
			WorstPoint: stats.WorstID,
			WorstError: stats.WorstError,
			BestPoint:  stats.BestID,
			BestError:  stats.BestError,
			StdDE:      stats.StdDE,
			StdDN:      stats.StdDN,
			StdDH:      stats.StdDH,
			P99:        stats.P99,
		},
		Report: report.Markdown(model, method, time.Now()),
	}
	for i, r := range residuals {
		resp.Residuals[i] = ResidualPoint{Point: r.ID, DE: r.DE, DN: r.DN, DH: r.DH}
	}
	return resp
}

func readUploadedLocal(r *http.Request) (points.Set, error) {
	f, err := openUpload(r, "local_csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set, err := ingest.ReadLocal(f)
	if err != nil {
		return nil, fmt.Errorf("local_csv: %w", err)
	}
	return set, nil
}

func readUploadedGlobal(r *http.Request) (points.GeodeticSet, error) {
	f, err := openUpload(r, "global_csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set, err := ingest.ReadGlobal(f)
	if err != nil {
		return nil, fmt.Errorf("global_csv: %w", err)
	}
	return set, nil
}

func openUpload(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s upload: %w", field, err)
	}
	return f, nil
}

// ltmParamsFromForm reads the optional LTM fields. Either all five are
// present or none; a partial set is an error.
func ltmParamsFromForm(r *http.Request) (*projection.LTMParams, error) {
	fields := []string{"central_meridian", "latitude_of_origin", "scale_factor", "false_easting", "false_northing"}
	values := make(map[string]float64, len(fields))
	var present int
	for _, name := range fields {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", name, raw, err)
		}
		values[name] = v
		present++
	}
	if present == 0 {
		return nil, nil
	}
	if present < len(fields) {
		return nil, errors.New("for LTM method, all projection parameters are required")
	}
	return &projection.LTMParams{
		CentralMeridian:  values["central_meridian"],
		LatitudeOfOrigin: values["latitude_of_origin"],
		ScaleFactor:      values["scale_factor"],
		FalseEasting:     values["false_easting"],
		FalseNorthing:    values["false_northing"],
	}, nil
}

func validationStatus(err error) string {
	var degenerate *calibration.DegenerateGeometryError
	if errors.As(err, &degenerate) {
		return "degenerate"
	}
	return "invalid_input"
}

func (s *Server) recordCalibration(method calibration.Method, status string) {
	calibrationsTotal.WithLabelValues(string(method), status).Inc()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	slog.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
