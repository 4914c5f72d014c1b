package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Labels are the fixed texts drawn around the numbers.
type Labels struct {
	Drill             string
	Duration          string
	Exertion          string
	Load              string
	Session           string
	Match             string
	Reference         string
	TrainingLoad      string
	TrainingIntensity string
	Absolute          string
	Relative          string
}

var englishLabels = Labels{
	Drill:             "Drill",
	Duration:          "Duration (min)",
	Exertion:          "RPE",
	Load:              "sRPE",
	Session:           "Session",
	Match:             "Match",
	Reference:         "Match reference",
	TrainingLoad:      "Training load",
	TrainingIntensity: "Training intensity",
	Absolute:          "Absolute:",
	Relative:          "Relative:",
}

var dutchLabels = Labels{
	Drill:             "Oefening",
	Duration:          "Duur (min)",
	Exertion:          "RPE",
	Load:              "sRPE",
	Session:           "Sessie",
	Match:             "Wedstrijd",
	Reference:         "Wedstrijd referentie",
	TrainingLoad:      "Training load",
	TrainingIntensity: "Trainingsintensiteit",
	Absolute:          "Absoluut:",
	Relative:          "Relatief:",
}

// Languages lists the supported label sets.
var Languages = []string{"en", "nl"}

// LabelsFor returns the label set for a language code.
func LabelsFor(lang string) (Labels, error) {
	switch lang {
	case "en", "":
		return englishLabels, nil
	case "nl":
		return dutchLabels, nil
	default:
		return Labels{}, fmt.Errorf("unsupported language %q", lang)
	}
}

// StyleOptions configure NewStyle.
type StyleOptions struct {
	Width    int    // image width in pixels, default 1200
	Language string // "en" or "nl"
	FontDir  string // optional directory with regular.ttf and bold.ttf
}

// Style is everything the renderer needs besides the numbers. A Style is
// read-only after NewStyle and safe to share between goroutines; font faces
// are created per render.
type Style struct {
	Width    int
	Language string
	FontDir  string
	Labels   Labels

	Regular *opentype.Font
	Bold    *opentype.Font

	Background color.Color
	Text       color.Color
	Grid       color.Color
	Shade      color.Color // header and session rows

	DrillBar     drawing.Color
	SessionBar   drawing.Color
	ReferenceBar drawing.Color
}

// DefaultWidth matches a 12 inch figure at 100 dpi.
const DefaultWidth = 1200

// MinWidth keeps the table text legible.
const MinWidth = 600

// NewStyle loads fonts and labels.
func NewStyle(opts StyleOptions) (*Style, error) {
	labels, err := LabelsFor(opts.Language)
	if err != nil {
		return nil, err
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth {
		return nil, fmt.Errorf("width must be at least %d, got %d", MinWidth, width)
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	regular, bold, err := loadFonts(opts.FontDir)
	if err != nil {
		return nil, err
	}

	return &Style{
		Width:        width,
		Language:     lang,
		FontDir:      opts.FontDir,
		Labels:       labels,
		Regular:      regular,
		Bold:         bold,
		Background:   color.White,
		Text:         color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
		Grid:         color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff},
		Shade:        color.RGBA{R: 0xf2, G: 0xf4, B: 0xee, A: 0xff},
		DrillBar:     drawing.ColorFromHex("4c78a8"),
		SessionBar:   drawing.ColorFromHex("2f4b2f"),
		ReferenceBar: drawing.ColorFromHex("b0b0b0"),
	}, nil
}

// WithLanguage returns a copy of the style using another label set.
func (s *Style) WithLanguage(lang string) (*Style, error) {
	labels, err := LabelsFor(lang)
	if err != nil {
		return nil, err
	}
	c := *s
	c.Labels = labels
	if lang == "" {
		lang = "en"
	}
	c.Language = lang
	return &c, nil
}

// Key identifies the settings that change the rendered image.
func (s *Style) Key() string {
	return fmt.Sprintf("lang=%s width=%d fonts=%s", s.Language, s.Width, s.FontDir)
}

func loadFonts(dir string) (regular, bold *opentype.Font, err error) {
	regularTTF, boldTTF := goregular.TTF, gobold.TTF
	if dir != "" {
		regularTTF, err = os.ReadFile(filepath.Join(dir, "regular.ttf"))
		if err != nil {
			return nil, nil, fmt.Errorf("reading regular font: %w", err)
		}
		boldTTF, err = os.ReadFile(filepath.Join(dir, "bold.ttf"))
		if os.IsNotExist(err) {
			boldTTF = regularTTF
		} else if err != nil {
			return nil, nil, fmt.Errorf("reading bold font: %w", err)
		}
	}

	regular, err = opentype.Parse(regularTTF)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err = opentype.Parse(boldTTF)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing bold font: %w", err)
	}
	return regular, bold, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
