package render

import (
	"strings"
	"testing"

	"resume-enhancer/resume/model"
)

func sampleDocument() model.ResumeDocument {
	return model.ResumeDocument{
		Name:        "Jane Doe",
		ContactInfo: "jane@x.com",
		Skills:      []string{"Go", "Rust", "C++", "Python", "SQL"},
		Experience: []model.ExperienceEntry{
			{
				Title:            "Engineer",
				Company:          "Acme",
				Location:         "NYC",
				Duration:         "2020-2023",
				Responsibilities: []string{"Built X", "Shipped Y"},
			},
		},
	}
}

func TestRenderHTMLWorkedExample(t *testing.T) {
	out := RenderHTML(sampleDocument())

	if got := strings.Count(out, "<h1 "); got != 1 {
		t.Fatalf("expected one h1, got %d", got)
	}
	assertContains(t, out, ">Jane Doe</h1>")
	assertContains(t, out, "<h3 style='margin-bottom:4px;'>Skills</h3>")
	assertContains(t, out, "<h3 style='margin-bottom:4px;'>Experience</h3>")
	assertContains(t, out, "<b>Engineer – Acme | NYC (2020-2023)</b>")
	assertNotContains(t, out, ">Summary</h3>")
	assertNotContains(t, out, ">Education</h3>")
	assertNotContains(t, out, ">Selected Projects</h3>")

	if got := strings.Count(out, "<li>"); got != 7 {
		t.Fatalf("expected 5 skills and 2 bullets, got %d list items", got)
	}
	if got := strings.Count(out, "<ul "); got != 2 {
		t.Fatalf("expected skills list and one bullet list, got %d", got)
	}
}

func TestRenderHTMLEmptyDocumentEmitsHeaderOnly(t *testing.T) {
	out := RenderHTML(model.ResumeDocument{})
	want := "<h1 style='font-size:24px;margin-bottom:4px;'></h1>\n" +
		"<p style='color:gray;font-size:12px;margin-bottom:8px;'></p>\n" +
		"<hr style='border:1px solid #ccc;margin:8px 0;'>"
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderHTMLEscapesEveryField(t *testing.T) {
	payload := `<script>alert("x")</script> & 'co'`
	doc := model.ResumeDocument{
		Name:             payload,
		ContactInfo:      payload,
		Summary:          payload,
		Skills:           []string{payload},
		SelectedProjects: []string{payload},
		Experience: []model.ExperienceEntry{{
			Title: payload, Company: payload, Location: payload, Duration: payload,
			Responsibilities: []string{payload},
		}},
		Education: []model.EducationEntry{{Degree: payload, Institution: payload, GraduationYear: payload}},
	}

	out := RenderHTML(doc)
	assertNotContains(t, out, "<script>")
	assertNotContains(t, out, `"x"`)
	assertNotContains(t, out, "& ")
	assertContains(t, out, "&lt;script&gt;")
	assertContains(t, out, "&amp;")
	assertContains(t, out, "&#34;x&#34;")
	assertContains(t, out, "&#39;co&#39;")
}

func TestRenderHTMLEscapesCompositeLineOnce(t *testing.T) {
	doc := model.ResumeDocument{
		Experience: []model.ExperienceEntry{{Title: "R&D", Company: "A<B", Location: "X", Duration: "1"}},
	}
	out := RenderHTML(doc)
	assertContains(t, out, "<b>R&amp;D – A&lt;B | X (1)</b>")
	assertNotContains(t, out, "&amp;amp;")
}

func TestRenderHTMLOmitsEmptySections(t *testing.T) {
	full := model.ResumeDocument{
		Summary:          "Seasoned engineer.",
		Skills:           []string{"Go"},
		Experience:       []model.ExperienceEntry{{Title: "Engineer"}},
		Education:        []model.EducationEntry{{Degree: "BSc"}},
		SelectedProjects: []string{"Compiler"},
	}
	empty := map[string]func(*model.ResumeDocument){
		model.SectionSummary:    func(d *model.ResumeDocument) { d.Summary = "" },
		model.SectionSkills:     func(d *model.ResumeDocument) { d.Skills = nil },
		model.SectionExperience: func(d *model.ResumeDocument) { d.Experience = []model.ExperienceEntry{} },
		model.SectionEducation:  func(d *model.ResumeDocument) { d.Education = nil },
		model.SectionProjects:   func(d *model.ResumeDocument) { d.SelectedProjects = []string{} },
	}

	for _, section := range model.SectionOrder {
		t.Run(section, func(t *testing.T) {
			doc := full.Clone()
			empty[section](&doc)
			out := RenderHTML(doc)
			assertNotContains(t, out, ">"+section+"</h3>")
			for _, other := range model.SectionOrder {
				if other != section {
					assertContains(t, out, ">"+other+"</h3>")
				}
			}
		})
	}
}

func TestRenderHTMLSectionOrder(t *testing.T) {
	doc := model.ResumeDocument{
		Summary:          "s",
		Skills:           []string{"k"},
		Experience:       []model.ExperienceEntry{{Title: "e"}},
		Education:        []model.EducationEntry{{Degree: "d"}},
		SelectedProjects: []string{"p"},
	}
	out := RenderHTML(doc)
	last := strings.Index(out, "<hr ")
	for _, section := range model.SectionOrder {
		idx := strings.Index(out, ">"+section+"</h3>")
		if idx <= last {
			t.Fatalf("section %s out of order", section)
		}
		last = idx
	}
}

func TestRenderHTMLPreservesOrder(t *testing.T) {
	doc := model.ResumeDocument{
		Experience: []model.ExperienceEntry{
			{Title: "First", Responsibilities: []string{"a1", "a2", "a3"}},
			{Title: "Second", Responsibilities: []string{"b1"}},
			{Title: "Third"},
		},
	}
	out := RenderHTML(doc)
	assertInOrder(t, out, "First", "a1", "a2", "a3", "Second", "b1", "Third")
	if strings.Count(out, "<ul ") != 2 {
		t.Fatalf("entry without responsibilities must not emit a list")
	}
}

func TestRenderHTMLIsIdempotent(t *testing.T) {
	doc := sampleDocument()
	if RenderHTML(doc) != RenderHTML(doc) {
		t.Fatalf("expected identical output")
	}
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q", needle)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected output to not contain %q", needle)
	}
}

func assertInOrder(t *testing.T, haystack string, needles ...string) {
	t.Helper()
	pos := -1
	for _, needle := range needles {
		idx := strings.Index(haystack[pos+1:], needle)
		if idx < 0 {
			t.Fatalf("expected %q after position %d", needle, pos)
		}
		pos += idx + 1
	}
}
