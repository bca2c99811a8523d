package enhance

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/oracle"
	"resume-enhancer/internal/shared/storage/object/local"
	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/model"
	"resume-enhancer/resume/render"
	"resume-enhancer/resume/schema"
)

type fakeScorer struct {
	score oracle.ScoreBreakdown
	err   error
	got   oracle.ScoreInput
}

func (f *fakeScorer) Score(_ context.Context, in oracle.ScoreInput) (oracle.ScoreBreakdown, error) {
	f.got = in
	return f.score, f.err
}

type fakeSuggester struct {
	out oracle.Suggestions
	err error
	got oracle.SuggestInput
}

func (f *fakeSuggester) Suggest(_ context.Context, in oracle.SuggestInput) (oracle.Suggestions, error) {
	f.got = in
	return f.out, f.err
}

type fakeRewriter struct {
	doc model.ResumeDocument
	err error
	got oracle.RewriteInput
}

func (f *fakeRewriter) Rewrite(_ context.Context, in oracle.RewriteInput) (model.ResumeDocument, error) {
	f.got = in
	return f.doc, f.err
}

type fakeJobs struct {
	text string
	err  error
	url  string
}

func (f *fakeJobs) Fetch(_ context.Context, url string) (string, error) {
	f.url = url
	return f.text, f.err
}

func sampleDoc() model.ResumeDocument {
	return model.ResumeDocument{
		Name:        "Jane Doe",
		ContactInfo: "jane@example.com | Berlin",
		Summary:     "Backend engineer focused on Go services.",
		Skills:      []string{"Go", "PostgreSQL", "Kubernetes", "gRPC"},
		Experience: []model.ExperienceEntry{{
			Title:            "Senior Engineer",
			Company:          "Acme",
			Location:         "Remote",
			Duration:         "2020 - 2024",
			Responsibilities: []string{"Cut p99 latency by 40%", "Led the billing rewrite"},
		}},
		Education:        []model.EducationEntry{{Degree: "BSc Computer Science", Institution: "TU Berlin", GraduationYear: "2016"}},
		SelectedProjects: []string{"Open-source rate limiter"},
	}
}

func goodScore() oracle.ScoreBreakdown {
	return oracle.ScoreBreakdown{
		OverallMatch: 72, SkillsMatch: 80, ExperienceMatch: 70, EducationMatch: 60,
		Explanations: oracle.Explanations{Overall: "Solid match"},
		Available:    true,
		Source:       "llm",
	}
}

type fixture struct {
	svc     *Service
	scorer  *fakeScorer
	suggest *fakeSuggester
	rewrite *fakeRewriter
	jobs    *fakeJobs
	dir     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		scorer:  &fakeScorer{score: goodScore()},
		suggest: &fakeSuggester{out: oracle.Suggestions{MissingSkills: []string{"Terraform"}, OtherRecommendations: []string{"Quantify impact"}}.Normalize()},
		rewrite: &fakeRewriter{doc: sampleDoc()},
		jobs:    &fakeJobs{text: "Go engineer, Kubernetes"},
		dir:     dir,
	}
	f.svc = &Service{
		Scorer:    f.scorer,
		Suggester: f.suggest,
		Rewriter:  f.rewrite,
		Store:     local.New(dir),
		Jobs:      f.jobs,
	}
	return f
}

func textInput() Input {
	return Input{
		FileName:       "resume.txt",
		MimeType:       "text/plain",
		FileData:       []byte("Jane Doe\nGo engineer at Acme"),
		JobDescription: "Senior Go engineer",
	}
}

func TestEnhanceHappyPath(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Enhance(context.Background(), textInput())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.True(t, res.PDFAvailable)
	assert.True(t, res.PreviewStored)
	assert.Empty(t, res.Fallbacks)
	assert.Equal(t, goodScore(), res.Score)
	assert.Contains(t, res.HTML, ">Jane Doe</h1>")

	assert.Equal(t, "Jane Doe\nGo engineer at Acme", f.scorer.got.ResumeText)
	assert.Equal(t, "resume.txt", f.scorer.got.FileName)
	assert.Equal(t, goodScore(), f.suggest.got.Score)
	assert.Equal(t, []string{"Terraform"}, f.rewrite.got.Suggestions.MissingSkills)

	pdfBytes, err := os.ReadFile(filepath.Join(f.dir, "enhanced", res.ID, ArtifactPDF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))

	preview, err := os.ReadFile(filepath.Join(f.dir, "enhanced", res.ID, ArtifactPreview))
	require.NoError(t, err)
	assert.Equal(t, res.HTML, string(preview))
}

func TestEnhanceScoreAndSuggestFallbacks(t *testing.T) {
	f := newFixture(t)
	f.scorer.err = llm.ErrRateLimited
	f.suggest.err = errors.New("provider down")

	res, err := f.svc.Enhance(context.Background(), textInput())
	require.NoError(t, err)

	assert.False(t, res.Score.Available)
	assert.Equal(t, oracle.EmptySuggestions(), res.Suggestions)
	assert.Equal(t, []string{"score", "suggest"}, res.Fallbacks)
	assert.False(t, f.suggest.got.Score.Available)
	assert.True(t, res.PDFAvailable)
}

func TestEnhanceRewriteFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"provider", llm.ErrBlocked, ErrRewriteFailed},
		{"malformed", &contract.MalformedInputError{Fields: []schema.FieldError{{Field: "skills", Message: "expected array"}}}, ErrMalformedResume},
		{"empty", oracle.ErrEmptyDocument, ErrMalformedResume},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.rewrite.err = tc.err

			_, err := f.svc.Enhance(context.Background(), textInput())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.err)

			entries, _ := os.ReadDir(f.dir)
			assert.Empty(t, entries)
		})
	}
}

func TestEnhancePDFFailureKeepsPreview(t *testing.T) {
	f := newFixture(t)
	f.svc.PDF = render.PDFOptions{FontPath: filepath.Join(f.dir, "missing.ttf")}

	res, err := f.svc.Enhance(context.Background(), textInput())
	require.NoError(t, err)

	assert.False(t, res.PDFAvailable)
	assert.True(t, res.PreviewStored)
	assert.Contains(t, res.HTML, "Jane Doe")
	assert.Equal(t, []string{"pdf"}, res.Fallbacks)

	_, err = f.svc.OpenArtifact(context.Background(), res.ID, ArtifactPDF)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnhanceInputErrors(t *testing.T) {
	f := newFixture(t)

	in := textInput()
	in.FileData = nil
	_, err := f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = textInput()
	in.JobDescription = "  "
	_, err = f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = textInput()
	in.FileName = "../../etc/passwd.txt"
	_, err = f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = textInput()
	in.FileName, in.MimeType = "resume.rtf", "application/rtf"
	_, err = f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = textInput()
	in.FileData = []byte("   \n ")
	_, err = f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrExtractFailed)
}

func TestEnhanceFetchesJobURL(t *testing.T) {
	f := newFixture(t)
	in := textInput()
	in.JobDescription = ""
	in.JobURL = "https://jobs.example.com/1"

	_, err := f.svc.Enhance(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com/1", f.jobs.url)
	assert.Equal(t, "Go engineer, Kubernetes", f.scorer.got.JobDescription)

	f.jobs.err = errors.New("404")
	_, err = f.svc.Enhance(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRenderAndOpenArtifact(t *testing.T) {
	f := newFixture(t)
	id := "6f1c2b9e-3d7a-4c55-9a61-0b8f2f1d4e77"

	out, err := f.svc.Render(context.Background(), id, sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, render.RenderHTML(sampleDoc()), out.HTML)

	rc, err := f.svc.OpenArtifact(context.Background(), id, ArtifactPreview)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, out.HTML, string(body))

	_, err = f.svc.OpenArtifact(context.Background(), "../etc/passwd", ArtifactPDF)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.OpenArtifact(context.Background(), "0b5d3d52-8f4e-4a57-9d9b-0b8f2f1d4e77", ArtifactPDF)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Render(context.Background(), "not-a-uuid", sampleDoc())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Render(context.Background(), "", sampleDoc())
	require.NoError(t, err)

	removed, err := f.svc.PurgeExpired(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	removed, err = f.svc.PurgeExpired(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = f.svc.OpenArtifact(context.Background(), out.ID, ArtifactPreview)
	assert.ErrorIs(t, err, ErrNotFound)
}
