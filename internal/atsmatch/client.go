package atsmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/oracle"
	"resume-enhancer/internal/shared/telemetry"
)

// DefaultSubmitURL is the SharpAPI resume/job match endpoint.
const DefaultSubmitURL = "https://api.apyhub.com/sharpapi/api/v1/hr/resume_job_match_score"

var (
	// ErrPollTimeout is returned when the job does not finish in time.
	ErrPollTimeout = errors.New("ats match polling timed out")
	// ErrJobFailed is returned when the API reports the job as failed.
	ErrJobFailed = errors.New("ats match job failed")
	// ErrNoFile is returned when the resume upload is missing.
	ErrNoFile = errors.New("ats match requires the resume file")
)

// Options configures a Client. Zero values fall back to the API defaults.
type Options struct {
	SubmitURL    string
	Language     string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPClient   *http.Client
}

// Client scores resumes with the SharpAPI match API. It submits the resume
// file with the job description and polls the returned status URL.
type Client struct {
	apiKey       string
	submitURL    string
	language     string
	pollInterval time.Duration
	pollTimeout  time.Duration
	httpClient   *http.Client
}

// NewClient builds a Client for apiKey.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("SHARPAPI_KEY is required")
	}
	c := &Client{
		apiKey:       apiKey,
		submitURL:    opts.SubmitURL,
		language:     opts.Language,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		httpClient:   opts.HTTPClient,
	}
	if c.submitURL == "" {
		c.submitURL = DefaultSubmitURL
	}
	if c.language == "" {
		c.language = "en"
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 5 * time.Second
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = 60 * time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

type submitResponse struct {
	StatusURL string `json:"status_url"`
	JobID     string `json:"job_id"`
}

// Submit uploads the resume and returns the status URL to poll.
func (c *Client) Submit(ctx context.Context, fileName string, file []byte, jobDescription string) (string, error) {
	if len(file) == 0 {
		return "", ErrNoFile
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file); err != nil {
		return "", err
	}
	if err := mw.WriteField("content", jobDescription); err != nil {
		return "", err
	}
	if err := mw.WriteField("language", c.language); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apy-token", c.apiKey)

	raw, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("ats match submit: %w", err)
	}
	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ats match submit parse: %w", err)
	}
	if strings.TrimSpace(parsed.StatusURL) == "" {
		return "", fmt.Errorf("ats match submit: response has no status_url")
	}
	return parsed.StatusURL, nil
}

// Poll fetches statusURL until match scores appear, the job fails, or the
// poll timeout elapses.
func (c *Client) Poll(ctx context.Context, statusURL string) (oracle.ScoreBreakdown, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return oracle.ScoreBreakdown{}, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("apy-token", c.apiKey)

		raw, err := c.do(req)
		if err != nil {
			if ctx.Err() != nil {
				return oracle.ScoreBreakdown{}, ErrPollTimeout
			}
			return oracle.ScoreBreakdown{}, fmt.Errorf("ats match poll: %w", err)
		}
		result, done, err := parseStatus(raw)
		if err != nil {
			return oracle.ScoreBreakdown{}, err
		}
		if done {
			return result, nil
		}

		telemetry.Info("atsmatch.pending", map[string]any{"attempt": attempt})
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return oracle.ScoreBreakdown{}, ErrPollTimeout
		case <-timer.C:
		}
	}
}

// Score submits in.FileData and waits for the breakdown.
func (c *Client) Score(ctx context.Context, in oracle.ScoreInput) (oracle.ScoreBreakdown, error) {
	statusURL, err := c.Submit(ctx, in.FileName, in.FileData, in.JobDescription)
	if err != nil {
		return oracle.ScoreBreakdown{}, err
	}
	return c.Poll(ctx, statusURL)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("http status %d: %w", resp.StatusCode, llm.ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

type matchScores struct {
	OverallMatch    *float64 `json:"overall_match"`
	SkillsMatch     *float64 `json:"skills_match"`
	SkillMatch      *float64 `json:"skill_match"`
	ExperienceMatch *float64 `json:"experience_match"`
	EducationMatch  *float64 `json:"education_match"`
}

type statusResult struct {
	MatchScores  *matchScores        `json:"match_scores"`
	Explanations oracle.Explanations `json:"explanations"`
	Explanation  string              `json:"explanation"`
}

type statusEnvelope struct {
	statusResult
	Status string `json:"status"`
	Data   *struct {
		Attributes struct {
			Status string       `json:"status"`
			Result statusResult `json:"result"`
		} `json:"attributes"`
	} `json:"data"`
}

// parseStatus accepts both the flat result shape and the JSON:API job shape.
func parseStatus(raw []byte) (oracle.ScoreBreakdown, bool, error) {
	var env statusEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return oracle.ScoreBreakdown{}, false, fmt.Errorf("ats match poll parse: %w", err)
	}
	result := env.statusResult
	status := env.Status
	if env.Data != nil {
		if result.MatchScores == nil {
			result = env.Data.Attributes.Result
		}
		if status == "" {
			status = env.Data.Attributes.Status
		}
	}
	if strings.EqualFold(status, "failed") {
		return oracle.ScoreBreakdown{}, false, ErrJobFailed
	}
	if result.MatchScores == nil {
		return oracle.ScoreBreakdown{}, false, nil
	}

	ms := result.MatchScores
	skills := ms.SkillsMatch
	if skills == nil {
		skills = ms.SkillMatch
	}
	out := oracle.ScoreBreakdown{
		OverallMatch:    value(ms.OverallMatch),
		SkillsMatch:     value(skills),
		ExperienceMatch: value(ms.ExperienceMatch),
		EducationMatch:  value(ms.EducationMatch),
		Explanations:    result.Explanations,
		Available:       true,
		Source:          "sharpapi",
	}
	if out.Explanations.Overall == "" {
		out.Explanations.Overall = result.Explanation
	}
	if err := out.Validate(); err != nil {
		return oracle.ScoreBreakdown{}, false, fmt.Errorf("ats match scores: %w", err)
	}
	return out, true, nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

var _ oracle.Scorer = (*Client)(nil)
