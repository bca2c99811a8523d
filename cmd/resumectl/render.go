package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a ResumeDocument JSON file to HTML and PDF",
	RunE:  runRender,
}

var (
	renderIn       string
	renderHTMLOut  string
	renderPDFOut   string
	renderStrict   bool
	renderFontPath string
	renderBoldPath string
)

func init() {
	renderCmd.Flags().StringVarP(&renderIn, "in", "i", "", "Path to ResumeDocument JSON (required)")
	renderCmd.Flags().StringVar(&renderHTMLOut, "html", "", "Path to write the HTML preview")
	renderCmd.Flags().StringVar(&renderPDFOut, "pdf", "", "Path to write the PDF")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "Reject documents with missing fields")
	renderCmd.Flags().StringVar(&renderFontPath, "font", os.Getenv("PDF_FONT_PATH"), "UTF-8 TrueType font for the PDF")
	renderCmd.Flags().StringVar(&renderBoldPath, "bold-font", os.Getenv("PDF_BOLD_FONT_PATH"), "Bold variant of --font")
	_ = renderCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	if renderHTMLOut == "" && renderPDFOut == "" {
		return fmt.Errorf("at least one of --html or --pdf is required")
	}

	raw, err := os.ReadFile(renderIn)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	mode := contract.Lenient
	if renderStrict {
		mode = contract.Strict
	}
	doc, err := contract.Decode(raw, mode)
	if err != nil {
		return fmt.Errorf("decode %s: %w", renderIn, err)
	}

	out := cmd.OutOrStdout()
	if renderHTMLOut != "" {
		if err := writeFile(renderHTMLOut, []byte(render.RenderHTML(doc))); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "HTML: %s\n", renderHTMLOut)
	}
	if renderPDFOut != "" {
		if err := os.MkdirAll(filepath.Dir(renderPDFOut), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		opts := render.PDFOptions{FontPath: renderFontPath, BoldFontPath: renderBoldPath}
		if err := render.RenderPDFFile(renderPDFOut, doc, opts); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "PDF: %s\n", renderPDFOut)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
