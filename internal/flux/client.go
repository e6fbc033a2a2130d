// Package flux drives asynchronous image generation jobs against the Flux
// Kontext API: create, poll to a terminal state, download, with bounded
// retry around the whole sequence.
package flux

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
	"logo-engine/internal/common/metrics"
)

const providerName = "flux"

// Client is the generation client. Construct once; safe for concurrent use
// because each call owns its job state.
type Client struct {
	cfg        config.FluxConfig
	httpClient *commonhttp.Client

	pollInterval time.Duration
	timeout      time.Duration
	backoffBase  time.Duration
	backoffCap   time.Duration
	maxRetries   int

	logger logger.Logger
}

func NewClient(cfg config.FluxConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// Poll and download requests carry their own deadline through the
		// overall timeout; the transport timeout only guards a single hung
		// connection.
		httpClient:   commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		pollInterval: config.GetDuration(cfg.PollInterval),
		timeout:      config.GetDuration(cfg.Timeout),
		backoffBase:  config.GetDuration(cfg.RetryBackoffBase),
		backoffCap:   config.GetDuration(cfg.RetryBackoffCap),
		maxRetries:   cfg.MaxRetries,
		logger:       log.With(map[string]interface{}{"component": "flux"}),
	}
}

// CheckCredentials reports whether the client holds a credential at all.
// The key is only proven valid by an actual request.
func (c *Client) CheckCredentials() error {
	if c.cfg.APIKey == "" {
		return apperrors.NewConfigurationError(providerName, "API key is not configured")
	}
	return nil
}

// createResponse is the job-creation envelope.
type createResponse struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url"`
}

// PollResponse is the polling envelope. Result and error shapes vary by
// terminal state, so they stay loosely typed.
type PollResponse struct {
	ID      string                 `json:"id"`
	Status  string                 `json:"status"`
	Result  map[string]interface{} `json:"result"`
	Error   interface{}            `json:"error"`
	Details map[string]interface{} `json:"details"`
}

// CreateRequest submits a new generation job. It requires a configured
// credential and fails with a configuration error before any I/O without
// one.
func (c *Client) CreateRequest(ctx context.Context, opts GenerationOptions) (*Job, error) {
	if c.cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError(providerName, "API key is not configured")
	}

	format := opts.OutputFormat
	if format == "" {
		format = c.cfg.OutputFormat
	}
	tolerance := c.cfg.SafetyTolerance
	if opts.SafetyTolerance != nil {
		tolerance = *opts.SafetyTolerance
	}

	payload := map[string]interface{}{
		"prompt":            opts.Prompt,
		"output_format":     format,
		"prompt_upsampling": opts.PromptUpsampling,
		"safety_tolerance":  tolerance,
	}
	if opts.InputImage != "" {
		payload["input_image"] = opts.InputImage
	}
	if opts.Seed != nil {
		payload["seed"] = *opts.Seed
	}
	if opts.AspectRatio != "" {
		payload["aspect_ratio"] = opts.AspectRatio
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/" + c.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create generation job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read create response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody map[string]interface{}
		_ = json.Unmarshal(raw, &errBody)
		return nil, apperrors.NewProviderAPIError(providerName, resp.StatusCode,
			fmt.Sprintf("job creation returned status %d", resp.StatusCode), errBody)
	}

	var created createResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	if created.ID == "" || created.PollingURL == "" {
		return nil, apperrors.NewProviderAPIError(providerName, resp.StatusCode,
			"job creation response is missing id or polling_url", nil)
	}

	now := time.Now()
	job := &Job{
		ID:         created.ID,
		PollingURL: created.PollingURL,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	c.logger.Info("generation job created", map[string]interface{}{
		"jobId": job.ID,
	})
	return job, nil
}

// PollResult performs a single poll against the job's polling endpoint.
func (c *Client) PollResult(ctx context.Context, job *Job) (*PollResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.PollingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("x-key", c.cfg.APIKey)

	metrics.GenerationPolls.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll job %s: %w", job.ID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read poll response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody map[string]interface{}
		_ = json.Unmarshal(raw, &errBody)
		return nil, apperrors.NewProviderAPIError(providerName, resp.StatusCode,
			fmt.Sprintf("poll returned status %d", resp.StatusCode), errBody)
	}

	var out PollResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return &out, nil
}

// WaitForCompletion polls at a fixed interval until the job reaches a
// terminal state or the deadline elapses, and returns the result sample
// URL. A transient error on a single poll does not abort the loop. An
// unrecognized status is treated as still in progress.
func (c *Client) WaitForCompletion(ctx context.Context, job *Job) (string, error) {
	start := time.Now()

	for {
		resp, err := c.PollResult(ctx, job)
		if err != nil {
			c.logger.Warn("poll failed, retrying at next interval", map[string]interface{}{
				"jobId": job.ID,
				"error": err.Error(),
			})
		} else {
			job.Status = Status(resp.Status)
			job.UpdatedAt = time.Now()

			switch {
			case job.Status == StatusReady:
				sample, _ := resp.Result["sample"].(string)
				if sample == "" {
					return "", apperrors.NewProviderAPIError(providerName, 0,
						fmt.Sprintf("job %s is Ready but has no result sample", job.ID), resp.Result)
				}
				job.ResultURL = sample
				return sample, nil

			case job.Status.Moderated():
				return "", apperrors.NewModerationError(job.ID, string(job.Status),
					"generation was blocked by content moderation")

			case job.Status == StatusError || job.Status == StatusFailed:
				job.ErrorText = errorText(resp)
				return "", fmt.Errorf("generation job %s ended with status %s: %s", job.ID, job.Status, job.ErrorText)

			case job.Status == StatusPending || job.Status == StatusRunning:
				// still in progress

			default:
				c.logger.Warn("unknown job status, continuing to poll", map[string]interface{}{
					"jobId":  job.ID,
					"status": string(job.Status),
				})
			}
		}

		elapsed := time.Since(start)
		if elapsed >= c.timeout {
			return "", apperrors.NewTimeoutError(job.ID, elapsed)
		}

		if err := sleepCtx(ctx, c.pollInterval); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return "", apperrors.NewTimeoutError(job.ID, time.Since(start))
			}
			return "", err
		}
	}
}

func errorText(resp *PollResponse) string {
	switch e := resp.Error.(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]interface{}:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if resp.Details != nil {
		if msg, ok := resp.Details["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return "no error detail reported"
}

// DownloadImageAsBase64 fetches the final image and encodes it as a
// content-type-aware data URI. Failures here are generic API errors: the
// generation itself succeeded.
func (c *Client) DownloadImageAsBase64(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.NewProviderAPIError(providerName, resp.StatusCode,
			fmt.Sprintf("image download returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// GenerateImage runs the full create, wait, download sequence inside a
// retry loop. Moderation and timeout failures are returned immediately,
// without retry; everything else backs off exponentially up to MaxRetries.
func (c *Client) GenerateImage(ctx context.Context, opts GenerationOptions) *GenerationResult {
	start := time.Now()
	var lastErr error

	// retries counts attempts that actually ran beyond the first, so a
	// context canceled mid-backoff does not get reported as maxRetries.
	retries := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.GenerationRetries.Inc()
			delay := c.backoffDelay(attempt - 1)
			c.logger.Warn("retrying generation", map[string]interface{}{
				"attempt": attempt,
				"delay":   delay.String(),
				"error":   lastErr.Error(),
			})
			if err := sleepCtx(ctx, delay); err != nil {
				lastErr = err
				break
			}
			retries = attempt
		}

		result, err := c.attempt(ctx, opts)
		if err == nil {
			result.ProcessingTime = time.Since(start)
			result.RetryCount = attempt
			metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
			metrics.GenerationDuration.WithLabelValues(metrics.OutcomeSuccess).Observe(result.ProcessingTime.Seconds())
			return result
		}
		lastErr = err

		if !apperrors.Retryable(err) {
			outcome := metrics.OutcomeModerated
			if apperrors.IsTimeout(err) {
				outcome = metrics.OutcomeTimeout
			}
			metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
			return &GenerationResult{
				Success:        false,
				GenerationID:   generationID(err),
				Error:          err.Error(),
				ProcessingTime: time.Since(start),
				RetryCount:     attempt,
			}
		}
	}

	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	errMsg := "generation failed"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}
	return &GenerationResult{
		Success:        false,
		Error:          errMsg,
		ProcessingTime: time.Since(start),
		RetryCount:     retries,
	}
}

// attempt is one pass through the create, wait, download sequence. The
// three stages are strictly ordered.
func (c *Client) attempt(ctx context.Context, opts GenerationOptions) (*GenerationResult, error) {
	job, err := c.CreateRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	sample, err := c.WaitForCompletion(ctx, job)
	if err != nil {
		return nil, err
	}

	data, err := c.DownloadImageAsBase64(ctx, sample)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Success:      true,
		ImageURL:     sample,
		ImageData:    data,
		GenerationID: job.ID,
	}, nil
}

// EditImage runs the same machinery with a reference image attached.
func (c *Client) EditImage(ctx context.Context, inputImage, prompt string, opts GenerationOptions) *GenerationResult {
	opts.Prompt = prompt
	opts.InputImage = inputImage
	return c.GenerateImage(ctx, opts)
}

// GenerateLogoVariations fires one independent GenerateImage per variation
// prompt, concurrently, and returns all results in input order. One
// variation failing never aborts its siblings.
func (c *Client) GenerateLogoVariations(ctx context.Context, basePrompt string, variations []string, opts GenerationOptions) []*GenerationResult {
	results := make([]*GenerationResult, len(variations))

	var wg sync.WaitGroup
	for i, variation := range variations {
		wg.Add(1)
		go func(i int, variation string) {
			defer wg.Done()
			vopts := opts
			vopts.Prompt = composePrompt(basePrompt, variation)
			results[i] = c.GenerateImage(ctx, vopts)
		}(i, variation)
	}
	wg.Wait()

	return results
}

func composePrompt(base, variation string) string {
	if base == "" {
		return variation
	}
	if variation == "" {
		return base
	}
	return base + ", " + variation
}

// backoffDelay returns min(base * 2^n, cap).
func (c *Client) backoffDelay(n int) time.Duration {
	// Shifting past 62 bits would wrap; the cap kicks in long before that.
	if n > 30 {
		return c.backoffCap
	}
	d := c.backoffBase << uint(n)
	if d > c.backoffCap {
		return c.backoffCap
	}
	return d
}

// generationID digs the job id out of a moderation or timeout error so the
// failure result still correlates with the vendor-side job.
func generationID(err error) string {
	var mod *apperrors.ModerationError
	if errors.As(err, &mod) {
		return mod.JobID
	}
	var to *apperrors.TimeoutError
	if errors.As(err, &to) {
		return to.JobID
	}
	return ""
}

// sleepCtx waits for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
