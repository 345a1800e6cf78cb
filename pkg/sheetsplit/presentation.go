package sheetsplit

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Presentation is the styling applied to every generated sheet, on top of
// the number formats copied from the source.
type Presentation struct {
	Header  StyleTemplate `yaml:"header"`
	EvenRow StyleTemplate `yaml:"even_row"`
	OddRow  StyleTemplate `yaml:"odd_row"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate      `yaml:"font"`
	Fill      *FillTemplate      `yaml:"fill"`
	Alignment *AlignmentTemplate `yaml:"alignment"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

type AlignmentTemplate struct {
	Horizontal string `yaml:"horizontal"` // center, left, right
	Vertical   string `yaml:"vertical"`   // top, center, bottom
}

// DefaultPresentation is a bold gray header with light-blue/white zebra rows.
func DefaultPresentation() Presentation {
	return Presentation{
		Header: StyleTemplate{
			Font:      &FontTemplate{Bold: true},
			Fill:      &FillTemplate{Color: "#E0E0E0"},
			Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
		},
		EvenRow: StyleTemplate{
			Fill:      &FillTemplate{Color: "#E6F3FF"},
			Alignment: &AlignmentTemplate{Vertical: "center"},
		},
		OddRow: StyleTemplate{
			Fill:      &FillTemplate{Color: "#FFFFFF"},
			Alignment: &AlignmentTemplate{Vertical: "center"},
		},
	}
}

// Merge fills the parts of p left unset with those of base.
func (p Presentation) Merge(base Presentation) Presentation {
	return Presentation{
		Header:  p.Header.merge(base.Header),
		EvenRow: p.EvenRow.merge(base.EvenRow),
		OddRow:  p.OddRow.merge(base.OddRow),
	}
}

func (t StyleTemplate) merge(base StyleTemplate) StyleTemplate {
	if t.Font == nil {
		t.Font = base.Font
	}
	if t.Fill == nil {
		t.Fill = base.Fill
	}
	if t.Alignment == nil {
		t.Alignment = base.Alignment
	}
	return t
}

// toStyle converts the template into an excelize style carrying nf.
func (t StyleTemplate) toStyle(nf NumFormat) *excelize.Style {
	style := &excelize.Style{}
	if t.Font != nil {
		style.Font = &excelize.Font{
			Bold:  t.Font.Bold,
			Color: strings.TrimPrefix(t.Font.Color, "#"),
		}
	}
	if t.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(t.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if t.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: t.Alignment.Horizontal,
			Vertical:   t.Alignment.Vertical,
		}
	}
	if !nf.IsDefault() {
		if nf.Custom != "" {
			custom := nf.Custom
			style.CustomNumFmt = &custom
		} else {
			style.NumFmt = nf.ID
		}
	}
	return style
}
