package render

import (
	"strings"

	"resume-enhancer/resume/model"
)

// BlockKind identifies a layout primitive.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockSpacer
	BlockRule
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockTable:
		return "table"
	case BlockSpacer:
		return "spacer"
	case BlockRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Block is one layout primitive handed to the PDF engine.
type Block struct {
	Kind BlockKind
	// Style and Text are set for paragraphs.
	Style string
	Text  string
	// Rows is set for tables.
	Rows [][]string
	// Height is set for spacers, Thickness for rules.
	Height    float64
	Thickness float64
}

func paragraph(style, text string) Block { return Block{Kind: BlockParagraph, Style: style, Text: text} }
func spacer(height float64) Block        { return Block{Kind: BlockSpacer, Height: height} }

// BuildLayout turns a document into the ordered block sequence the PDF
// renderer paginates. It is pure and deterministic.
func BuildLayout(doc model.ResumeDocument) []Block {
	blocks := make([]Block, 0, 16)

	if strings.TrimSpace(doc.Name) != "" {
		blocks = append(blocks, paragraph(StyleName, doc.Name))
	}
	if strings.TrimSpace(doc.ContactInfo) != "" {
		blocks = append(blocks, paragraph(StyleBody, doc.ContactInfo))
	}
	blocks = append(blocks, spacer(8), Block{Kind: BlockRule, Thickness: ruleThickness}, spacer(8))

	for _, section := range model.SectionOrder {
		if !doc.HasSection(section) {
			continue
		}
		blocks = append(blocks, paragraph(StyleHeading, section))
		switch section {
		case model.SectionSummary:
			blocks = append(blocks, paragraph(StyleBody, doc.Summary), spacer(10))
		case model.SectionSkills:
			blocks = append(blocks, Block{Kind: BlockTable, Rows: SkillRows(doc.Skills, skillColumns)}, spacer(10))
		case model.SectionExperience:
			for _, exp := range doc.Experience {
				blocks = append(blocks, paragraph(StyleSubheader, ExperienceTitleLine(exp)))
				for _, resp := range exp.Responsibilities {
					blocks = append(blocks, paragraph(StyleBullet, bulletGlyph+resp))
				}
				blocks = append(blocks, spacer(6))
			}
		case model.SectionEducation:
			for _, edu := range doc.Education {
				blocks = append(blocks, paragraph(StyleBody, EducationLine(edu)), spacer(4))
			}
			blocks = append(blocks, spacer(10))
		case model.SectionProjects:
			for _, project := range doc.SelectedProjects {
				blocks = append(blocks, paragraph(StyleBody, project), spacer(6))
			}
		}
	}
	return blocks
}

// SkillRows groups skills into rows of cols entries, filled left to right.
// The final row keeps only the remaining entries and is never padded.
func SkillRows(skills []string, cols int) [][]string {
	if cols <= 0 || len(skills) == 0 {
		return nil
	}
	rows := make([][]string, 0, (len(skills)+cols-1)/cols)
	for start := 0; start < len(skills); start += cols {
		end := start + cols
		if end > len(skills) {
			end = len(skills)
		}
		rows = append(rows, append([]string(nil), skills[start:end]...))
	}
	return rows
}
