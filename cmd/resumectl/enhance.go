package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-enhancer/internal/bootstrap"
	"resume-enhancer/internal/enhance"
	"resume-enhancer/internal/extract"
	"resume-enhancer/internal/shared/config"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Score, rewrite and render a resume against a job description",
	Long:  "Runs the enhance pipeline with the providers configured in the environment and writes result.json, preview.html and enhanced_resume.pdf to --out-dir.",
	RunE:  runEnhance,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the plain text extracted from a resume file",
	RunE:  runExtract,
}

var (
	enhanceResume string
	enhanceJD     string
	enhanceJDURL  string
	enhanceOutDir string
	extractIn     string
)

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceResume, "resume", "r", "", "Path to resume file: pdf, docx or txt (required)")
	enhanceCmd.Flags().StringVar(&enhanceJD, "jd", "", "Path to job description text file")
	enhanceCmd.Flags().StringVar(&enhanceJDURL, "jd-url", "", "URL of the job posting")
	enhanceCmd.Flags().StringVarP(&enhanceOutDir, "out-dir", "o", "./out", "Directory for the outputs")
	_ = enhanceCmd.MarkFlagRequired("resume")
	enhanceCmd.MarkFlagsMutuallyExclusive("jd", "jd-url")
	enhanceCmd.MarkFlagsOneRequired("jd", "jd-url")

	extractCmd.Flags().StringVarP(&extractIn, "in", "i", "", "Path to resume file (required)")
	_ = extractCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(enhanceCmd, extractCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ObjectStoreType = "local"
	cfg.LocalStoreDir = filepath.Join(enhanceOutDir, ".artifacts")

	app, err := bootstrap.Build(cfg)
	if err != nil {
		return err
	}
	return enhanceToDir(cmd.Context(), cmd.OutOrStdout(), app.EnhanceService)
}

func enhanceToDir(ctx context.Context, out io.Writer, svc *enhance.Service) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := os.ReadFile(enhanceResume)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	in := enhance.Input{
		FileName: filepath.Base(enhanceResume),
		FileData: data,
		JobURL:   strings.TrimSpace(enhanceJDURL),
	}
	if enhanceJD != "" {
		jd, err := os.ReadFile(enhanceJD)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		in.JobDescription = string(jd)
	}

	res, err := svc.Enhance(ctx, in)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(map[string]any{
		"id":           res.ID,
		"atsScore":     res.Score,
		"suggestions":  res.Suggestions,
		"resume":       res.Resume,
		"pdfAvailable": res.PDFAvailable,
		"degraded":     res.Fallbacks,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(enhanceOutDir, "result.json"), append(payload, '\n')); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(enhanceOutDir, enhance.ArtifactPreview), []byte(res.HTML)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "ID: %s\n", res.ID)

	if !res.PDFAvailable {
		_, _ = fmt.Fprintln(out, "PDF: not available")
		return nil
	}
	rc, err := svc.OpenArtifact(ctx, res.ID, enhance.ArtifactPDF)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer rc.Close()
	pdfBytes, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	pdfPath := filepath.Join(enhanceOutDir, enhance.ArtifactPDF)
	if err := writeFile(pdfPath, pdfBytes); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "PDF: %s\n", pdfPath)
	return nil
}

func runExtract(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(extractIn)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	text, err := extract.ExtractTextFromBytes(cmd.Context(), data, "", filepath.Base(extractIn))
	if err != nil {
		return fmt.Errorf("extract text mime=%s: %w", extract.DetectMimeType("", extractIn, data), err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
