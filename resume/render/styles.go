package render

// RGB is a text or stroke color.
type RGB struct {
	R, G, B int
}

// ParagraphStyle captures the fixed formatting of a PDF paragraph.
type ParagraphStyle struct {
	Bold        bool
	Size        float64
	Leading     float64
	SpaceBefore float64
	SpaceAfter  float64
	LeftIndent  float64
	Color       RGB
}

// Paragraph style names.
const (
	StyleName      = "name"
	StyleHeading   = "heading"
	StyleSubheader = "subheader"
	StyleBody      = "body"
	StyleBullet    = "bullet"
)

const (
	pageSize    = "Letter"
	pageMargin  = 50.0
	fontFamily  = "Helvetica"
	bulletGlyph = "• "

	skillColumns      = 4
	tableFontSize     = 11.0
	tableLeading      = 13.2
	tableCellPadding  = 6.0
	tableTopPadding   = 3.0
	tableBottomPadPts = 6.0

	ruleThickness = 1.0
)

var (
	ruleColor  = RGB{0xcc, 0xcc, 0xcc}
	tableColor = RGB{0, 0, 0}
)

// StyleMap centralizes the PDF paragraph styles.
var StyleMap = map[string]ParagraphStyle{
	StyleName: {
		Bold:       true,
		Size:       18,
		Leading:    22,
		SpaceAfter: 4,
		Color:      RGB{0x11, 0x11, 0x11},
	},
	StyleHeading: {
		Bold:        true,
		Size:        14,
		Leading:     16,
		SpaceBefore: 12,
		SpaceAfter:  6,
		Color:       RGB{0x22, 0x22, 0x22},
	},
	StyleSubheader: {
		Bold:        true,
		Size:        12,
		Leading:     14,
		SpaceBefore: 6,
		SpaceAfter:  2,
		Color:       RGB{0x33, 0x33, 0x33},
	},
	StyleBody: {
		Size:    11,
		Leading: 14,
		Color:   RGB{0, 0, 0},
	},
	StyleBullet: {
		Size:       11,
		Leading:    14,
		LeftIndent: 14,
		SpaceAfter: 2,
		Color:      RGB{0, 0, 0},
	},
}

// Inline styles of the HTML preview.
const (
	htmlNameStyle    = "font-size:24px;margin-bottom:4px;"
	htmlContactStyle = "color:gray;font-size:12px;margin-bottom:8px;"
	htmlRuleStyle    = "border:1px solid #ccc;margin:8px 0;"
	htmlHeadingStyle = "margin-bottom:4px;"
	htmlSummaryStyle = "font-size:12px;margin-bottom:8px;"
	htmlListStyle    = "font-size:12px;margin-bottom:8px;padding-left:20px;"
	htmlEntryStyle   = "font-size:12px;margin:2px 0;"
)
