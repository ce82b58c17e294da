// Package server exposes the site calibration pipeline over HTTP:
// multipart CSV uploads in, calibration parameters, residuals and a
// rendered report out.
package server

import "github.com/geosurv/sitecal/internal/config"

// Server holds the HTTP server state and dependencies.
type Server struct {
	corsOrigin  string
	maxUploadMB int64
}

// NewServer creates a calibration server from the server configuration.
func NewServer(cfg config.ServerConfig) *Server {
	return &Server{
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
	}
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type HorizontalParameters struct {
	A        float64 `json:"a"`
	B        float64 `json:"b"`
	TE       float64 `json:"tE"`
	TN       float64 `json:"tN"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

type VerticalParameters struct {
	VerticalShift float64 `json:"vertical_shift"`
	SlopeNorth    float64 `json:"slope_north"`
	SlopeEast     float64 `json:"slope_east"`
	CentroidNorth float64 `json:"centroid_north"`
	CentroidEast  float64 `json:"centroid_east"`
}

type CalibrationParameters struct {
	Horizontal HorizontalParameters `json:"horizontal"`
	Vertical   VerticalParameters   `json:"vertical"`
}

type ResidualPoint struct {
	Point string  `json:"Point"`
	DE    float64 `json:"dE"`
	DN    float64 `json:"dN"`
	DH    float64 `json:"dH"`
}

type StatisticsSummary struct {
	WorstPoint string  `json:"worst_point"`
	WorstError float64 `json:"worst_error"`
	BestPoint  string  `json:"best_point"`
	BestError  float64 `json:"best_error"`
	StdDE      float64 `json:"std_dE"`
	StdDN      float64 `json:"std_dN"`
	StdDH      float64 `json:"std_dH"`
	P99        float64 `json:"p99_horizontal_error"`
}

type CalibrationResponse struct {
	Parameters CalibrationParameters `json:"parameters"`
	Residuals  []ResidualPoint       `json:"residuals"`
	Statistics StatisticsSummary     `json:"statistics"`
	Report     string                `json:"report"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
