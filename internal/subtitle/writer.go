package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Writer stores a document at path in one subtitle format.
type Writer interface {
	Write(doc *Document, path string) error
}

// fileWriter renders the whole document, then writes it in one call.
type fileWriter struct {
	render func(*Document) string
}

func (w fileWriter) Write(doc *Document, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(w.render(doc)), 0644)
}

// ASSStyle is the single "Default" style of generated ASS scripts.
type ASSStyle struct {
	Title    string
	FontName string
	FontSize int
}

var defaultASSStyle = ASSStyle{Title: "subburn", FontName: "Arial", FontSize: 20}

// format name, canonical extension, extra extensions
type formatEntry struct {
	format  Format
	ext     string
	aliases []string
}

func (f formatEntry) matches(ext string) bool {
	return ext == f.ext || slices.Contains(f.aliases, ext)
}

var formatTable = []formatEntry{
	{FormatSRT, ".srt", nil},
	{FormatVTT, ".vtt", nil},
	{FormatASS, ".ass", []string{".ssa"}},
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return fileWriter{render: WriteSRT}, nil
	case FormatVTT:
		return fileWriter{render: RenderVTT}, nil
	case FormatASS:
		return fileWriter{render: func(doc *Document) string {
			return RenderASS(doc, defaultASSStyle)
		}}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// RenderVTT renders doc as WebVTT, keeping cue indices as identifiers.
func RenderVTT(doc *Document) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for cue := range doc.Cues() {
		h1, m1, s1, ms1 := splitSeconds(cue.Start)
		h2, m2, s2, ms2 := splitSeconds(cue.End)
		fmt.Fprintf(&sb, "%d\n%02d:%02d:%02d.%03d %s %02d:%02d:%02d.%03d\n%s\n\n",
			cue.Index, h1, m1, s1, ms1, arrow, h2, m2, s2, ms2, cue.Text)
	}
	return sb.String()
}

const assStyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, " +
	"OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, " +
	"Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"

// RenderASS renders doc as an ASS v4+ script. Newlines in cue text become \N.
func RenderASS(doc *Document, style ASSStyle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Script Info]\nTitle: %s\nScriptType: v4.00+\nCollisions: Normal\nPlayDepth: 0\n\n", style.Title)

	sb.WriteString("[V4+ Styles]\n" + assStyleFormat + "\n")
	fmt.Fprintf(&sb, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,"+
		"0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n", style.FontName, style.FontSize)

	sb.WriteString("[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for cue := range doc.Cues() {
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			assTime(cue.Start), assTime(cue.End), strings.ReplaceAll(cue.Text, "\n", `\N`))
	}
	return sb.String()
}

// H:MM:SS.cc, centiseconds truncated
func assTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// GetFormatFromExtension picks the format for path; unknown extensions are SRT.
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formatTable {
		if f.matches(ext) {
			return f.format
		}
	}
	return FormatSRT
}

func GetExtensionForFormat(format Format) string {
	for _, f := range formatTable {
		if f.format == format {
			return f.ext
		}
	}
	return ".srt"
}

// ParseFormat maps a user-supplied name to a Format. Empty means SRT.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatSRT, nil
	}
	for _, f := range formatTable {
		if f.matches("." + name) {
			return f.format, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", name)
}
