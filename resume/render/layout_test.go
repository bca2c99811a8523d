package render

import (
	"fmt"
	"reflect"
	"testing"

	"resume-enhancer/resume/model"
)

func TestSkillRowsGridInvariant(t *testing.T) {
	for n := 0; n <= 13; n++ {
		skills := make([]string, n)
		for i := range skills {
			skills[i] = fmt.Sprintf("skill-%d", i)
		}
		rows := SkillRows(skills, 4)

		wantRows := (n + 3) / 4
		if len(rows) != wantRows {
			t.Fatalf("n=%d: expected %d rows, got %d", n, wantRows, len(rows))
		}
		for i, row := range rows {
			want := 4
			if i == len(rows)-1 && n%4 != 0 {
				want = n % 4
			}
			if len(row) != want {
				t.Fatalf("n=%d row %d: expected %d cells, got %d", n, i, want, len(row))
			}
		}

		var flat []string
		for _, row := range rows {
			flat = append(flat, row...)
		}
		if n > 0 && !reflect.DeepEqual(flat, skills) {
			t.Fatalf("n=%d: expected row-major order %v, got %v", n, skills, flat)
		}
	}
}

func TestBuildLayoutWorkedExample(t *testing.T) {
	blocks := BuildLayout(sampleDocument())

	tables := blocksOf(blocks, BlockTable)
	if len(tables) != 1 {
		t.Fatalf("expected one skills table, got %d", len(tables))
	}
	want := [][]string{{"Go", "Rust", "C++", "Python"}, {"SQL"}}
	if !reflect.DeepEqual(tables[0].Rows, want) {
		t.Fatalf("expected rows %v, got %v", want, tables[0].Rows)
	}

	headings := headingsOf(blocks)
	if !reflect.DeepEqual(headings, []string{model.SectionSkills, model.SectionExperience}) {
		t.Fatalf("unexpected headings %v", headings)
	}

	var bullets []string
	for _, b := range blocks {
		if b.Kind == BlockParagraph && b.Style == StyleBullet {
			bullets = append(bullets, b.Text)
		}
	}
	if !reflect.DeepEqual(bullets, []string{"• Built X", "• Shipped Y"}) {
		t.Fatalf("unexpected bullets %v", bullets)
	}
}

func TestBuildLayoutTitleBlock(t *testing.T) {
	blocks := BuildLayout(model.ResumeDocument{Name: "Jane Doe", ContactInfo: "jane@x.com"})
	want := []Block{
		{Kind: BlockParagraph, Style: StyleName, Text: "Jane Doe"},
		{Kind: BlockParagraph, Style: StyleBody, Text: "jane@x.com"},
		{Kind: BlockSpacer, Height: 8},
		{Kind: BlockRule, Thickness: 1},
		{Kind: BlockSpacer, Height: 8},
	}
	if !reflect.DeepEqual(blocks, want) {
		t.Fatalf("unexpected title block %+v", blocks)
	}
}

func TestBuildLayoutEmptyDocumentHasNoSections(t *testing.T) {
	blocks := BuildLayout(model.ResumeDocument{})
	if len(headingsOf(blocks)) != 0 {
		t.Fatalf("expected no headings, got %v", headingsOf(blocks))
	}
	if len(blocksOf(blocks, BlockRule)) != 1 {
		t.Fatalf("expected the header rule")
	}
}

func TestBuildLayoutSectionOrderAndSpacing(t *testing.T) {
	doc := model.ResumeDocument{
		Summary:          "s",
		Skills:           []string{"k"},
		Experience:       []model.ExperienceEntry{{Title: "e"}},
		Education:        []model.EducationEntry{{Degree: "d", Institution: "i", GraduationYear: "2010"}},
		SelectedProjects: []string{"p"},
	}
	blocks := BuildLayout(doc)
	if got := headingsOf(blocks); !reflect.DeepEqual(got, model.SectionOrder) {
		t.Fatalf("expected %v, got %v", model.SectionOrder, got)
	}

	// Education: line, spacer 4, closing spacer 10.
	for i, b := range blocks {
		if b.Text == "d – i (2010)" {
			if blocks[i+1].Height != 4 || blocks[i+2].Height != 10 {
				t.Fatalf("unexpected education spacing %+v %+v", blocks[i+1], blocks[i+2])
			}
			return
		}
	}
	t.Fatalf("education line not found")
}

func TestBuildLayoutOmitsEmptySections(t *testing.T) {
	full := model.ResumeDocument{
		Summary:          "Seasoned engineer.",
		Skills:           []string{"Go"},
		Experience:       []model.ExperienceEntry{{Title: "Engineer"}},
		Education:        []model.EducationEntry{{Degree: "BSc"}},
		SelectedProjects: []string{"Compiler"},
	}
	empty := map[string]func(*model.ResumeDocument){
		model.SectionSummary:    func(d *model.ResumeDocument) { d.Summary = "  " },
		model.SectionSkills:     func(d *model.ResumeDocument) { d.Skills = nil },
		model.SectionExperience: func(d *model.ResumeDocument) { d.Experience = []model.ExperienceEntry{} },
		model.SectionEducation:  func(d *model.ResumeDocument) { d.Education = nil },
		model.SectionProjects:   func(d *model.ResumeDocument) { d.SelectedProjects = []string{} },
	}

	for _, section := range model.SectionOrder {
		t.Run(section, func(t *testing.T) {
			doc := full.Clone()
			empty[section](&doc)
			blocks := BuildLayout(doc)

			var want []string
			for _, other := range model.SectionOrder {
				if other != section {
					want = append(want, other)
				}
			}
			if got := headingsOf(blocks); !reflect.DeepEqual(got, want) {
				t.Fatalf("expected headings %v, got %v", want, got)
			}
			if section == model.SectionSkills && len(blocksOf(blocks, BlockTable)) != 0 {
				t.Fatalf("expected no skills table")
			}
		})
	}
}

func TestBuildLayoutExperienceWithoutResponsibilities(t *testing.T) {
	doc := model.ResumeDocument{
		Experience: []model.ExperienceEntry{{Title: "First"}, {Title: "Second", Responsibilities: []string{"r"}}},
	}
	var got []string
	for _, b := range BuildLayout(doc) {
		if b.Kind == BlockParagraph && (b.Style == StyleSubheader || b.Style == StyleBullet) {
			got = append(got, b.Text)
		}
	}
	want := []string{"First –  |  ()", "Second –  |  ()", "• r"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func blocksOf(blocks []Block, kind BlockKind) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

func headingsOf(blocks []Block) []string {
	var out []string
	for _, b := range blocks {
		if b.Kind == BlockParagraph && b.Style == StyleHeading {
			out = append(out, b.Text)
		}
	}
	return out
}
