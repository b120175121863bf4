package constants

// Static route constants
const (
	UploadsRoute = "/uploads"
	MetricsRoute = "/metrics"
	APIRoute     = "/api"
	// Upload path without leading slash for filesystem access
	UploadsPath = "uploads"
)
