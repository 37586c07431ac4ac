package constants

// Пути health и ready (остальные API — в router).
const (
	PathHealth = "/health"
	PathReady  = "/ready"
)
