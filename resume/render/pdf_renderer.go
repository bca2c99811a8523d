package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"resume-enhancer/resume/model"
)

// ErrRenderFailed matches every RenderError.
var ErrRenderFailed = errors.New("pdf render failed")

// RenderError reports that no PDF was written. Op is one of font, layout or write.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("pdf render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRenderFailed }

// PDFOptions tunes document metadata and fonts. The zero value renders with
// the core Helvetica fonts and a fixed creation date.
type PDFOptions struct {
	// FontPath and BoldFontPath select a UTF-8 TrueType font instead of the
	// cp1252 core fonts. BoldFontPath defaults to FontPath.
	FontPath     string
	BoldFontPath string
	// CreatedAt is written as both creation and modification date.
	CreatedAt time.Time
}

var defaultCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// RenderPDF writes a complete PDF of doc to w. The document is built fully in
// memory first, so w receives either the whole file or nothing from a failed
// layout.
func RenderPDF(w io.Writer, doc model.ResumeDocument, opts PDFOptions) error {
	if w == nil {
		return &RenderError{Op: "write", Err: errors.New("nil destination")}
	}
	var buf bytes.Buffer
	if err := buildPDF(&buf, doc, opts); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &RenderError{Op: "write", Err: err}
	}
	return nil
}

// RenderPDFFile writes the PDF of doc to path.
func RenderPDFFile(path string, doc model.ResumeDocument, opts PDFOptions) error {
	if strings.TrimSpace(path) == "" {
		return &RenderError{Op: "write", Err: errors.New("empty destination path")}
	}
	var buf bytes.Buffer
	if err := buildPDF(&buf, doc, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &RenderError{Op: "write", Err: err}
	}
	return nil
}

func buildPDF(out io.Writer, doc model.ResumeDocument, opts PDFOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Op: "layout", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	engine, err := newPDFEngine(doc, opts)
	if err != nil {
		return err
	}
	for _, block := range BuildLayout(doc) {
		engine.draw(block)
		if engine.pdf.Err() {
			return &RenderError{Op: "layout", Err: engine.pdf.Error()}
		}
	}
	if err := engine.pdf.Output(out); err != nil {
		return &RenderError{Op: "layout", Err: err}
	}
	return nil
}

type pdfEngine struct {
	pdf          *fpdf.Fpdf
	tr           func(string) string
	family       string
	contentWidth float64
	breakAt      float64
}

func newPDFEngine(doc model.ResumeDocument, opts PDFOptions) (*pdfEngine, error) {
	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCellMargin(0)

	created := opts.CreatedAt
	if created.IsZero() {
		created = defaultCreatedAt
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("resume-enhancer", true)
	if name := strings.TrimSpace(doc.Name); name != "" {
		pdf.SetTitle(name+" - Resume", true)
		pdf.SetAuthor(name, true)
	}

	e := &pdfEngine{pdf: pdf, family: fontFamily}
	if opts.FontPath != "" {
		bold := opts.BoldFontPath
		if bold == "" {
			bold = opts.FontPath
		}
		pdf.AddUTF8Font("ResumeFont", "", opts.FontPath)
		pdf.AddUTF8Font("ResumeFont", "B", bold)
		e.family = "ResumeFont"
		e.tr = func(s string) string { return s }
	} else {
		e.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if pdf.Err() {
		return nil, &RenderError{Op: "font", Err: pdf.Error()}
	}

	pdf.AddPage()
	width, height := pdf.GetPageSize()
	e.contentWidth = width - 2*pageMargin
	e.breakAt = height - pageMargin
	return e, nil
}

func (e *pdfEngine) draw(b Block) {
	switch b.Kind {
	case BlockParagraph:
		e.paragraph(b.Style, b.Text)
	case BlockSpacer:
		e.pdf.Ln(b.Height)
	case BlockRule:
		e.rule(b.Thickness)
	case BlockTable:
		e.table(b.Rows)
	}
}

func (e *pdfEngine) paragraph(styleName, text string) {
	style, ok := StyleMap[styleName]
	if !ok {
		style = StyleMap[StyleBody]
	}
	// Space before is dropped at the top of a page.
	if style.SpaceBefore > 0 && e.pdf.GetY() > pageMargin {
		e.pdf.Ln(style.SpaceBefore)
	}
	e.setFont(style.Bold, style.Size, style.Color)
	e.pdf.SetX(pageMargin + style.LeftIndent)
	e.pdf.MultiCell(e.contentWidth-style.LeftIndent, style.Leading, e.tr(text), "", "L", false)
	if style.SpaceAfter > 0 {
		e.pdf.Ln(style.SpaceAfter)
	}
}

func (e *pdfEngine) rule(thickness float64) {
	y := e.pdf.GetY()
	if y+thickness > e.breakAt {
		e.pdf.AddPage()
		y = e.pdf.GetY()
	}
	e.pdf.SetDrawColor(ruleColor.R, ruleColor.G, ruleColor.B)
	e.pdf.SetLineWidth(thickness)
	e.pdf.Line(pageMargin, y+thickness/2, pageMargin+e.contentWidth, y+thickness/2)
	e.pdf.SetY(y + thickness)
}

// table lays rows out left aligned with columns sized to their widest cell.
// Rows are never split across pages.
func (e *pdfEngine) table(rows [][]string) {
	e.setFont(false, tableFontSize, tableColor)
	widths := e.columnWidths(rows)

	for _, row := range rows {
		cells := make([][]string, len(row))
		maxLines := 1
		for i, cell := range row {
			cells[i] = e.wrap(e.tr(cell), widths[i]-2*tableCellPadding)
			if len(cells[i]) > maxLines {
				maxLines = len(cells[i])
			}
		}
		rowHeight := tableTopPadding + float64(maxLines)*tableLeading + tableBottomPadPts

		y := e.pdf.GetY()
		if y+rowHeight > e.breakAt {
			e.pdf.AddPage()
			y = e.pdf.GetY()
		}
		x := pageMargin
		for i := range row {
			for j, line := range cells[i] {
				e.pdf.SetXY(x+tableCellPadding, y+tableTopPadding+float64(j)*tableLeading)
				e.pdf.CellFormat(widths[i]-2*tableCellPadding, tableLeading, line, "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
		e.pdf.SetXY(pageMargin, y+rowHeight)
	}
}

func (e *pdfEngine) columnWidths(rows [][]string) []float64 {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]float64, cols)
	total := 0.0
	for i := range widths {
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			if w := e.pdf.GetStringWidth(e.tr(row[i])) + 2*tableCellPadding; w > widths[i] {
				widths[i] = w
			}
		}
		total += widths[i]
	}
	if total > e.contentWidth {
		scale := e.contentWidth / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

// wrap splits text into lines no wider than width, breaking on spaces.
// A single word wider than width keeps its own line.
func (e *pdfEngine) wrap(text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if e.pdf.GetStringWidth(candidate) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

func (e *pdfEngine) setFont(bold bool, size float64, color RGB) {
	style := ""
	if bold {
		style = "B"
	}
	e.pdf.SetFont(e.family, style, size)
	e.pdf.SetTextColor(color.R, color.G, color.B)
}
