package workflow

import (
	"time"

	"logo-engine/internal/flux"
	"logo-engine/internal/llm"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	LogoStatusCompleted = "completed"
	LogoStatusFailed    = "failed"
)

// GenerationRequest describes one workflow session.
type GenerationRequest struct {
	BusinessInfo   *llm.BusinessInformation
	VariationCount int
	Options        flux.GenerationOptions
	OnProgress     func(Progress)
}

// GeneratedLogo is a single produced (or attempted) logo.
type GeneratedLogo struct {
	ID           string `json:"id"`
	Prompt       string `json:"prompt"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ImageData    string `json:"imageData,omitempty"`
	GenerationID string `json:"generationId,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// Progress is a point-in-time snapshot delivered to OnProgress callbacks.
// Callbacks receive a copy and cannot mutate coordinator state.
type Progress struct {
	Status                 string          `json:"status"`
	CurrentStep            string          `json:"currentStep"`
	CompletedSteps         int             `json:"completedSteps"`
	TotalSteps             int             `json:"totalSteps"`
	Percentage             int             `json:"percentage"`
	Message                string          `json:"message"`
	GeneratedLogos         []GeneratedLogo `json:"generatedLogos,omitempty"`
	EstimatedTimeRemaining time.Duration   `json:"estimatedTimeRemaining,omitempty"`
	Error                  string          `json:"error,omitempty"`
}

// Result is the aggregate outcome of a session.
type Result struct {
	Success        bool            `json:"success"`
	SessionID      string          `json:"sessionId"`
	Prompt         string          `json:"prompt"`
	Logos          []GeneratedLogo `json:"logos"`
	TotalGenerated int             `json:"totalGenerated"`
	FailedCount    int             `json:"failedCount"`
	ProcessingTime time.Duration   `json:"processingTime"`
	Error          string          `json:"error,omitempty"`
}
