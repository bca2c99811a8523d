package enhance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resume-enhancer/internal/extract"
	"resume-enhancer/internal/oracle"
	"resume-enhancer/internal/shared/metrics"
	"resume-enhancer/internal/shared/storage/object"
	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/internal/shared/util"
	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/model"
	"resume-enhancer/resume/render"
)

// Artifact names stored under enhanced/<id>/.
const (
	ArtifactPDF     = "enhanced_resume.pdf"
	ArtifactPreview = "preview.html"

	artifactRoot = "enhanced"
)

// ArtifactKey returns the storage key of an artifact for an enhance id.
func ArtifactKey(id, name string) string {
	return artifactRoot + "/" + id + "/" + name
}

// JobFetcher downloads a job posting and returns its text.
type JobFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Input is one enhance request.
type Input struct {
	FileName       string
	MimeType       string
	FileData       []byte
	JobDescription string
	JobURL         string
}

// Rendered is the output of the render step.
type Rendered struct {
	ID           string
	HTML         string
	PDFAvailable bool
	// PreviewStored is false when the HTML preview could not be persisted.
	PreviewStored bool
}

// Result is the full pipeline output.
type Result struct {
	Rendered
	Score       oracle.ScoreBreakdown
	Suggestions oracle.Suggestions
	Resume      model.ResumeDocument
	// Fallbacks lists the steps that degraded instead of failing.
	Fallbacks []string
}

// Service runs the enhance pipeline: extract, score, suggest, rewrite,
// render and store.
type Service struct {
	Scorer    oracle.Scorer
	Suggester oracle.Suggester
	Rewriter  oracle.Rewriter
	Store     object.ObjectStore
	Jobs      JobFetcher
	PDF       render.PDFOptions
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enhance runs the whole pipeline. Scoring and suggestion failures degrade to
// defaults; a failed rewrite fails the request.
func (s *Service) Enhance(ctx context.Context, in Input) (Result, error) {
	start := s.now()
	metrics.IncEnhanceStarted()
	res, err := s.enhance(ctx, in)
	metrics.ObserveEnhanceDurationMs(float64(s.now().Sub(start).Milliseconds()))
	if err != nil {
		metrics.IncEnhanceFailed()
		return Result{}, err
	}
	metrics.IncEnhanceCompleted()
	return res, nil
}

func (s *Service) enhance(ctx context.Context, in Input) (Result, error) {
	if len(in.FileData) == 0 {
		return Result{}, fmt.Errorf("%w: resume file is required", ErrInvalidInput)
	}
	if in.FileName != "" {
		name, err := util.SanitizeFileName(in.FileName)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		in.FileName = name
	}
	jobDescription, err := s.jobDescription(ctx, in)
	if err != nil {
		return Result{}, err
	}

	resumeText, err := extract.ExtractTextFromBytes(ctx, in.FileData, in.MimeType, in.FileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	id := uuid.NewString()
	telemetry.Info("enhance.extracted", map[string]any{
		"enhance_id":    id,
		"file_name":     in.FileName,
		"resume_sha256": util.SHA256Hex(in.FileData),
		"resume_chars":  len(resumeText),
		"jd_chars":      len(jobDescription),
	})

	var fallbacks []string
	score, err := s.Scorer.Score(ctx, oracle.ScoreInput{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		FileName:       in.FileName,
		FileData:       in.FileData,
	})
	if err != nil {
		telemetry.Warn("enhance.score_failed", map[string]any{"enhance_id": id, "error": err})
		metrics.IncOracleFallback("score")
		fallbacks = append(fallbacks, "score")
		score = oracle.Unavailable("ATS scoring is unavailable for this request.")
	}

	suggestions, err := s.Suggester.Suggest(ctx, oracle.SuggestInput{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		Score:          score,
	})
	if err != nil {
		telemetry.Warn("enhance.suggest_failed", map[string]any{"enhance_id": id, "error": err})
		metrics.IncOracleFallback("suggest")
		fallbacks = append(fallbacks, "suggest")
		suggestions = oracle.EmptySuggestions()
	}

	doc, err := s.Rewriter.Rewrite(ctx, oracle.RewriteInput{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		Score:          score,
		Suggestions:    suggestions,
	})
	if err != nil {
		telemetry.Error("enhance.rewrite_failed", map[string]any{"enhance_id": id, "error": err})
		if errors.Is(err, contract.ErrMalformedInput) || errors.Is(err, oracle.ErrEmptyDocument) {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedResume, err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrRewriteFailed, err)
	}

	rendered, err := s.render(ctx, id, doc)
	if err != nil {
		return Result{}, err
	}
	if !rendered.PDFAvailable {
		fallbacks = append(fallbacks, "pdf")
	}

	telemetry.Info("enhance.completed", map[string]any{
		"enhance_id":    id,
		"pdf_available": rendered.PDFAvailable,
		"score_source":  score.Source,
		"fallbacks":     fallbacks,
	})
	return Result{
		Rendered:    rendered,
		Score:       score,
		Suggestions: suggestions,
		Resume:      doc,
		Fallbacks:   fallbacks,
	}, nil
}

func (s *Service) jobDescription(ctx context.Context, in Input) (string, error) {
	if jd := strings.TrimSpace(in.JobDescription); jd != "" {
		return jd, nil
	}
	url := strings.TrimSpace(in.JobURL)
	if url == "" {
		return "", fmt.Errorf("%w: job_description or job_url is required", ErrInvalidInput)
	}
	if s.Jobs == nil {
		return "", fmt.Errorf("%w: job_url is not supported", ErrInvalidInput)
	}
	jd, err := s.Jobs.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: fetch job posting: %w", ErrInvalidInput, err)
	}
	return jd, nil
}

// Render renders and stores a document the caller already holds. An empty id
// gets a fresh one.
func (s *Service) Render(ctx context.Context, id string, doc model.ResumeDocument) (Rendered, error) {
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return Rendered{}, fmt.Errorf("%w: id must be a UUID", ErrInvalidInput)
	}
	return s.render(ctx, id, doc.Normalize())
}

// render produces the HTML preview and the PDF concurrently. A PDF or store
// failure only clears PDFAvailable; the preview is always returned.
func (s *Service) render(ctx context.Context, id string, doc model.ResumeDocument) (Rendered, error) {
	out := Rendered{ID: id}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.HTML = render.RenderHTML(doc)
		if err := s.save(gctx, ArtifactKey(id, ArtifactPreview), "text/html; charset=utf-8", strings.NewReader(out.HTML)); err != nil {
			telemetry.Warn("enhance.preview_store_failed", map[string]any{"enhance_id": id, "error": err})
			return nil
		}
		out.PreviewStored = true
		return nil
	})

	g.Go(func() error {
		var buf bytes.Buffer
		if err := render.RenderPDF(&buf, doc, s.PDF); err != nil {
			telemetry.Warn("enhance.pdf_render_failed", map[string]any{"enhance_id": id, "error": err})
			metrics.IncPDFRenderFailed()
			return nil
		}
		if err := s.save(gctx, ArtifactKey(id, ArtifactPDF), "application/pdf", &buf); err != nil {
			telemetry.Warn("enhance.pdf_store_failed", map[string]any{"enhance_id": id, "error": err})
			metrics.IncPDFRenderFailed()
			return nil
		}
		out.PDFAvailable = true
		return nil
	})

	if err := g.Wait(); err != nil {
		return Rendered{}, err
	}
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, key, contentType string, r io.Reader) error {
	if s.Store == nil {
		return errors.New("no object store configured")
	}
	_, err := s.Store.SaveWithKey(ctx, key, contentType, r)
	return err
}

// OpenArtifact opens a stored artifact. Unknown, malformed and expired ids
// all report ErrNotFound.
func (s *Service) OpenArtifact(ctx context.Context, id, name string) (io.ReadCloser, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if s.Store == nil {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, ArtifactKey(parsed.String(), name))
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// PurgeExpired deletes artifacts older than ttl when the store supports it.
func (s *Service) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	purger, ok := s.Store.(object.Purger)
	if !ok || ttl <= 0 {
		return 0, nil
	}
	return purger.PurgeOlderThan(ctx, artifactRoot, s.now().Add(-ttl))
}

// RunSweeper calls PurgeExpired every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.PurgeExpired(ctx, ttl)
			if err != nil {
				telemetry.Warn("enhance.sweep_failed", map[string]any{"error": err})
				continue
			}
			if removed > 0 {
				telemetry.Info("enhance.sweep", map[string]any{"removed": removed})
			}
		}
	}
}
