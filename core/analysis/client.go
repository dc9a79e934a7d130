package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vibemesh/config"
	"vibemesh/logger"
)

// JobStatus is the provider-side state of an analysis job.
type JobStatus string

const (
	StatusPending   JobStatus = "Pending"
	StatusRunning   JobStatus = "Running"
	StatusSuccess   JobStatus = "Success"
	StatusFailed    JobStatus = "Failed"
	StatusCancelled JobStatus = "Cancelled"
)

// Terminal reports whether the status ends an analysis job.
func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// Client drives the Dolby.io media analysis API through one job lifecycle:
// token, input upload, job submission, status polling, output download.
type Client struct {
	httpClient      *http.Client
	authURL         string
	mediaURL        string
	namespace       string // Provider-side object namespace, e.g. dlb://vibemesh
	appKey          string
	appSecret       string
	logDir          string // Local landing directory for downloaded documents
	pollInterval    time.Duration
	maxPollAttempts int
}

// NewClient builds a provider client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		authURL:         cfg.DolbyAuthURL,
		mediaURL:        cfg.DolbyMediaURL,
		namespace:       strings.TrimSuffix(cfg.DolbyNamespace, "/"),
		appKey:          cfg.DolbyAppKey,
		appSecret:       cfg.DolbyAppSecret,
		logDir:          cfg.AnalysisLogDir,
		pollInterval:    cfg.PollInterval,
		maxPollAttempts: cfg.MaxPollAttempts,
	}
}

// inputLocation names the uploaded audio in the provider namespace.
func (c *Client) inputLocation(trackName string) string {
	return fmt.Sprintf("%s/%s.mp3", c.namespace, trackName)
}

// outputLocation names the analysis result in the provider namespace.
func (c *Client) outputLocation(trackName string) string {
	return fmt.Sprintf("%s/%s.json", c.namespace, trackName)
}

// Authenticate obtains a fresh access token via the client-credentials
// grant. Tokens are short-lived, so every orchestration run fetches its own.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.appKey + ":" + c.appSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth request returned status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("auth response contained no access token")
	}
	return result.AccessToken, nil
}

// mediaRequest performs an authenticated JSON request against the media API.
func (c *Client) mediaRequest(ctx context.Context, token, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.mediaURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// UploadInput uploads the local audio file into the provider's media
// storage: first a presigned destination URL is requested for the track's
// input location, then the file bytes are streamed to it with the true
// length declared.
func (c *Client) UploadInput(ctx context.Context, token, trackName, trackPath string) error {
	var dest struct {
		URL string `json:"url"`
	}
	body := map[string]string{"url": c.inputLocation(trackName)}
	if err := c.mediaRequest(ctx, token, http.MethodPost, "/media/input", body, &dest); err != nil {
		return fmt.Errorf("failed to retrieve upload URL: %w", err)
	}

	file, err := os.Open(trackPath)
	if err != nil {
		return fmt.Errorf("failed to open track file %s: %w", trackPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat track file %s: %w", trackPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest.URL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload to provider storage failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload to provider storage returned status %d", resp.StatusCode)
	}

	logger.Info("Uploaded track to provider storage",
		logger.String("track", trackName),
		logger.Int64("bytes", info.Size()))
	return nil
}

// SubmitJob registers a music analysis job for the uploaded input and
// returns the provider's opaque job id.
func (c *Client) SubmitJob(ctx context.Context, token, trackName string) (string, error) {
	var result struct {
		JobID string `json:"job_id"`
	}
	body := map[string]string{
		"input":  c.inputLocation(trackName),
		"output": c.outputLocation(trackName),
	}
	if err := c.mediaRequest(ctx, token, http.MethodPost, "/media/analyze/music", body, &result); err != nil {
		return "", fmt.Errorf("failed to submit analysis job: %w", err)
	}
	if result.JobID == "" {
		return "", fmt.Errorf("job submission returned no job id")
	}

	logger.Info("Submitted analysis job",
		logger.String("track", trackName),
		logger.String("jobId", result.JobID))
	return result.JobID, nil
}

// PollUntilTerminal queries the job status on a fixed interval until it
// reaches Success, Failed or Cancelled. A non-2xx status response aborts
// immediately; exhausting the attempt budget returns ErrPollTimeout.
func (c *Client) PollUntilTerminal(ctx context.Context, token, jobID string) (JobStatus, error) {
	path := "/media/analyze/music?job_id=" + url.QueryEscape(jobID)

	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		var result struct {
			Status JobStatus `json:"status"`
		}
		if err := c.mediaRequest(ctx, token, http.MethodGet, path, nil, &result); err != nil {
			return "", fmt.Errorf("failed to poll job %s: %w", jobID, err)
		}

		logger.Debug("Polled analysis job",
			logger.String("jobId", jobID),
			logger.String("status", string(result.Status)),
			logger.Int("attempt", attempt))

		if result.Status.Terminal() {
			return result.Status, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return "", fmt.Errorf("job %s after %d attempts: %w", jobID, c.maxPollAttempts, ErrPollTimeout)
}

// DownloadOutput fetches the finished analysis document. The provider
// hands out a presigned read URL for the job's output location; the
// content is first landed in the local log directory (created or truncated
// before streaming), then parsed into the typed document.
func (c *Client) DownloadOutput(ctx context.Context, token, trackName string) (*RawAnalysisDocument, error) {
	var src struct {
		URL string `json:"url"`
	}
	body := map[string]string{"url": c.outputLocation(trackName)}
	if err := c.mediaRequest(ctx, token, http.MethodPost, "/media/output", body, &src); err != nil {
		return nil, fmt.Errorf("failed to retrieve download URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download of analysis document failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download of analysis document returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create analysis log directory: %w", err)
	}
	outputPath := filepath.Join(c.logDir, trackName+".json")
	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create local analysis file %s: %w", outputPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to save analysis document to %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close analysis file %s: %w", outputPath, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis document %s: %w", outputPath, err)
	}

	logger.Info("Downloaded analysis document",
		logger.String("track", trackName),
		logger.Int("bytes", len(data)))
	return ParseDocument(data)
}
