package enhance

import (
	"resume-enhancer/internal/oracle"
	"resume-enhancer/resume/model"
)

type enhanceResponse struct {
	ID           string                `json:"id"`
	ATSScore     oracle.ScoreBreakdown `json:"atsScore"`
	Suggestions  oracle.Suggestions    `json:"suggestions"`
	Resume       model.ResumeDocument  `json:"resume"`
	HTML         string                `json:"html"`
	PDFAvailable bool                  `json:"pdfAvailable"`
	DownloadURL  string                `json:"downloadUrl,omitempty"`
	PreviewURL   string                `json:"previewUrl,omitempty"`
	Degraded     []string              `json:"degraded,omitempty"`
}

type renderResponse struct {
	ID           string `json:"id"`
	HTML         string `json:"html"`
	PDFAvailable bool   `json:"pdfAvailable"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	PreviewURL   string `json:"previewUrl,omitempty"`
}

func toEnhanceResponse(basePath string, res Result) enhanceResponse {
	out := enhanceResponse{
		ID:           res.ID,
		ATSScore:     res.Score,
		Suggestions:  res.Suggestions,
		Resume:       res.Resume.Normalize(),
		HTML:         res.HTML,
		PDFAvailable: res.PDFAvailable,
		Degraded:     res.Fallbacks,
	}
	out.DownloadURL, out.PreviewURL = artifactURLs(basePath, res.Rendered)
	return out
}

func toRenderResponse(basePath string, r Rendered) renderResponse {
	out := renderResponse{ID: r.ID, HTML: r.HTML, PDFAvailable: r.PDFAvailable}
	out.DownloadURL, out.PreviewURL = artifactURLs(basePath, r)
	return out
}

func artifactURLs(basePath string, r Rendered) (download, preview string) {
	if r.PDFAvailable {
		download = basePath + "/enhance/" + r.ID + "/download"
	}
	if r.PreviewStored {
		preview = basePath + "/enhance/" + r.ID + "/preview"
	}
	return download, preview
}
