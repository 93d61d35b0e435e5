package sdk

import (
	"time"
)

// EngineMetadata provides identification and capability information for an engine.
// This information is used for marketplace discovery and compatibility checks.
type EngineMetadata struct {
	// ID is a unique identifier for the engine (e.g., "acme.priority-v2").
	// Should follow reverse-domain notation.
	ID string `json:"id"`

	// Name is a human-readable name for the engine.
	Name string `json:"name"`

	// Version is the semantic version of the engine (e.g., "2.0.1").
	Version string `json:"version"`

	// Author is the author or organization that created the engine.
	Author string `json:"author"`

	// Description is a brief description of what the engine does.
	Description string `json:"description"`

	// License is the license type (e.g., "MIT", "Apache-2.0").
	License string `json:"license"`

	// Homepage is a URL to documentation or the project homepage.
	Homepage string `json:"homepage"`

	// Tags are searchable tags for marketplace discovery.
	Tags []string `json:"tags"`

	// MinAPIVersion is the minimum SDK version required (e.g., "1.0.0").
	MinAPIVersion string `json:"min_api_version"`

	// Capabilities lists engine-specific capabilities.
	// For schedulers: ["schedule_tasks", "find_optimal_slot", "reschedule_conflicts"]
	Capabilities []string `json:"capabilities"`
}

// HealthStatus represents the current health of an engine.
type HealthStatus struct {
	// Healthy indicates if the engine is functioning correctly.
	Healthy bool `json:"healthy"`

	// Message provides additional context about the health status.
	Message string `json:"message,omitempty"`

	// Details contains engine-specific health information.
	Details map[string]any `json:"details,omitempty"`

	// CheckedAt is when the health check was performed.
	CheckedAt time.Time `json:"checked_at"`
}

// NewHealthStatus creates a healthy status with the given message.
func NewHealthStatus(healthy bool, message string) HealthStatus {
	return HealthStatus{
		Healthy:   healthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}
