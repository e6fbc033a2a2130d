// Package workflow sequences one end-to-end logo generation session:
// input validation, prompt construction, the primary generation, and any
// requested variations.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"logo-engine/internal/common/logger"
	"logo-engine/internal/common/validation"
	"logo-engine/internal/flux"
	"logo-engine/internal/prompt"
)

// Generator is the slice of the generation client the coordinator needs.
type Generator interface {
	GenerateImage(ctx context.Context, opts flux.GenerationOptions) *flux.GenerationResult
	GenerateLogoVariations(ctx context.Context, basePrompt string, variations []string, opts flux.GenerationOptions) []*flux.GenerationResult
}

// Coordinator owns one workflow invocation's progress state for its
// duration and shares nothing with concurrent sessions.
type Coordinator struct {
	generator Generator
	logger    logger.Logger
}

func NewCoordinator(generator Generator, log logger.Logger) *Coordinator {
	return &Coordinator{
		generator: generator,
		logger:    log.With(map[string]interface{}{"component": "workflow"}),
	}
}

// Generate runs one full session. Partial failures are retained per item;
// the aggregate only fails when nothing succeeded.
func (c *Coordinator) Generate(ctx context.Context, req *GenerationRequest) *Result {
	start := time.Now()
	sessionID := uuid.New().String()
	log := c.logger.With(map[string]interface{}{"sessionId": sessionID})

	totalSteps := 3
	if req.VariationCount > 0 {
		totalSteps = 4
	}
	progress := &Progress{
		Status:     StatusRunning,
		TotalSteps: totalSteps,
	}

	fail := func(msg string) *Result {
		progress.Status = StatusFailed
		progress.Error = msg
		report(req.OnProgress, progress)
		log.Error("workflow failed", map[string]interface{}{"error": msg})
		return &Result{
			SessionID:      sessionID,
			Error:          msg,
			FailedCount:    0,
			ProcessingTime: time.Since(start),
		}
	}

	// Step 1: validate.
	advance(req.OnProgress, progress, "validate", "Checking business information")
	if req.BusinessInfo == nil || strings.TrimSpace(req.BusinessInfo.CompanyName) == "" {
		return fail("business information with a company name is required")
	}
	if msg := validateOptions(req); msg != "" {
		return fail(msg)
	}

	// Step 2: build the generation prompt.
	advance(req.OnProgress, progress, "build-prompt", "Composing the logo prompt")
	basePrompt := prompt.BuildLogoPrompt(req.BusinessInfo)
	log.Info("prompt built", map[string]interface{}{"length": len(basePrompt)})

	// Step 3: primary generation.
	advance(req.OnProgress, progress, "generate", "Generating the primary logo")
	opts := req.Options
	opts.Prompt = basePrompt
	primary := c.generator.GenerateImage(ctx, opts)

	logos := []GeneratedLogo{toLogo(basePrompt, primary)}
	progress.GeneratedLogos = append([]GeneratedLogo{}, logos...)
	report(req.OnProgress, progress)

	// Step 4: variations, one per style directive, concurrently and
	// independently of each other.
	if req.VariationCount > 0 {
		advance(req.OnProgress, progress, "variations", "Generating logo variations")
		if primary.Success {
			progress.EstimatedTimeRemaining = primary.ProcessingTime * time.Duration(req.VariationCount)
			report(req.OnProgress, progress)
		}

		styles := prompt.VariationStyles(req.VariationCount)
		results := c.generator.GenerateLogoVariations(ctx, basePrompt, styles, req.Options)
		for i, r := range results {
			logos = append(logos, toLogo(prompt.BuildVariationPrompt(basePrompt, styles[i]), r))
		}
	}

	result := summarize(sessionID, basePrompt, logos, start)

	progress.GeneratedLogos = logos
	progress.CompletedSteps = progress.TotalSteps
	progress.Percentage = 100
	progress.EstimatedTimeRemaining = 0
	if result.Success {
		progress.Status = StatusCompleted
		progress.Message = "Generation complete"
	} else {
		progress.Status = StatusFailed
		progress.Error = result.Error
	}
	report(req.OnProgress, progress)

	log.Info("workflow finished", map[string]interface{}{
		"totalGenerated": result.TotalGenerated,
		"failedCount":    result.FailedCount,
	})
	return result
}

// GenerateVariations is the follow-up entry point: further variations of
// an already generated logo, without re-running business-info processing.
func (c *Coordinator) GenerateVariations(ctx context.Context, baseLogo *GeneratedLogo, count int, options flux.GenerationOptions) *Result {
	start := time.Now()
	sessionID := uuid.New().String()

	if baseLogo == nil || baseLogo.Prompt == "" {
		return &Result{
			SessionID:      sessionID,
			Error:          "a previously generated logo with its prompt is required",
			ProcessingTime: time.Since(start),
		}
	}
	if count <= 0 {
		count = 1
	}

	// Re-anchor on the original image when we have one, so variations
	// drift from the actual logo rather than only its prompt.
	if baseLogo.ImageData != "" {
		options.InputImage = baseLogo.ImageData
	}

	styles := prompt.VariationStyles(count)
	results := c.generator.GenerateLogoVariations(ctx, baseLogo.Prompt, styles, options)

	logos := make([]GeneratedLogo, 0, len(results))
	for i, r := range results {
		logos = append(logos, toLogo(prompt.BuildVariationPrompt(baseLogo.Prompt, styles[i]), r))
	}

	return summarize(sessionID, baseLogo.Prompt, logos, start)
}

func validateOptions(req *GenerationRequest) string {
	options := map[string]interface{}{
		"variation_count": req.VariationCount,
	}
	if req.Options.AspectRatio != "" {
		options["aspect_ratio"] = req.Options.AspectRatio
	}
	if req.Options.OutputFormat != "" {
		options["output_format"] = req.Options.OutputFormat
	}
	if req.Options.SafetyTolerance != nil {
		options["safety_tolerance"] = *req.Options.SafetyTolerance
	}

	res, err := validation.ValidateGenerationRequest(options)
	if err != nil {
		return err.Error()
	}
	if !res.Valid {
		return "invalid generation options: " + strings.Join(res.Errors, "; ")
	}
	return ""
}

func toLogo(promptText string, r *flux.GenerationResult) GeneratedLogo {
	logo := GeneratedLogo{
		ID:     uuid.New().String(),
		Prompt: promptText,
	}
	if r != nil && r.Success {
		logo.Status = LogoStatusCompleted
		logo.ImageURL = r.ImageURL
		logo.ImageData = r.ImageData
		logo.GenerationID = r.GenerationID
	} else {
		logo.Status = LogoStatusFailed
		if r != nil {
			logo.Error = r.Error
		}
	}
	return logo
}

func summarize(sessionID, basePrompt string, logos []GeneratedLogo, start time.Time) *Result {
	result := &Result{
		SessionID:      sessionID,
		Prompt:         basePrompt,
		Logos:          logos,
		ProcessingTime: time.Since(start),
	}
	for _, l := range logos {
		if l.Status == LogoStatusCompleted {
			result.TotalGenerated++
		} else {
			result.FailedCount++
		}
	}
	// Zero successes is the only aggregate failure.
	result.Success = result.TotalGenerated > 0
	if !result.Success {
		result.Error = "all generation attempts failed"
		for _, l := range logos {
			if l.Error != "" {
				result.Error = l.Error
				break
			}
		}
	}
	return result
}

func advance(cb func(Progress), p *Progress, step, message string) {
	if p.CurrentStep != "" {
		p.CompletedSteps++
	}
	p.CurrentStep = step
	p.Message = message
	p.Percentage = p.CompletedSteps * 100 / p.TotalSteps
	report(cb, p)
}

func report(cb func(Progress), p *Progress) {
	if cb != nil {
		cb(*p)
	}
}
