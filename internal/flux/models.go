package flux

import "time"

// Status is a generation job's lifecycle state as reported by the image
// API.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusRunning          Status = "Running"
	StatusReady            Status = "Ready"
	StatusError            Status = "Error"
	StatusFailed           Status = "Failed"
	StatusRequestModerated Status = "Request Moderated"
	StatusContentModerated Status = "Content Moderated"
)

// Terminal reports whether the job has reached a final state. Unrecognized
// statuses are treated as still in progress; the polling loop logs them and
// keeps going.
func (s Status) Terminal() bool {
	switch s {
	case StatusReady, StatusError, StatusFailed, StatusRequestModerated, StatusContentModerated:
		return true
	default:
		return false
	}
}

// Moderated reports whether the job was rejected by content policy.
func (s Status) Moderated() bool {
	return s == StatusRequestModerated || s == StatusContentModerated
}

// Job tracks one asynchronous generation request. It is local to a single
// GenerateImage invocation and mutated only by polling reads.
type Job struct {
	ID         string    `json:"id"`
	PollingURL string    `json:"pollingUrl"`
	Status     Status    `json:"status"`
	ResultURL  string    `json:"resultUrl,omitempty"`
	ErrorText  string    `json:"errorText,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// GenerationOptions are the knobs for one generation call.
type GenerationOptions struct {
	Prompt string `json:"prompt"`

	// InputImage is a base64-encoded reference image for edits and
	// variations on an existing logo.
	InputImage string `json:"inputImage,omitempty"`

	Seed             *int   `json:"seed,omitempty"`
	AspectRatio      string `json:"aspectRatio,omitempty"`
	OutputFormat     string `json:"outputFormat,omitempty"`
	PromptUpsampling bool   `json:"promptUpsampling"`

	// SafetyTolerance is 0 (strict) to 2 (default) when set.
	SafetyTolerance *int `json:"safetyTolerance,omitempty"`
}

// GenerationResult is the immutable outcome of one GenerateImage call.
type GenerationResult struct {
	Success        bool          `json:"success"`
	ImageURL       string        `json:"imageUrl,omitempty"`
	ImageData      string        `json:"imageData,omitempty"` // data URI
	GenerationID   string        `json:"generationId,omitempty"`
	ProcessingTime time.Duration `json:"processingTime"`
	Error          string        `json:"error,omitempty"`
	RetryCount     int           `json:"retryCount"`
}
