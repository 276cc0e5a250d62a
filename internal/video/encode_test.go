package video

import (
	"slices"
	"testing"
)

func TestNewEncodeConfigDefaults(t *testing.T) {
	cfg := NewEncodeConfig("", "", "", nil)

	if cfg.Device() != DeviceCPU {
		t.Errorf("device = %q, want cpu", cfg.Device())
	}
	if cfg.Encoder() != SoftwareEncoder {
		t.Errorf("encoder = %q, want %q", cfg.Encoder(), SoftwareEncoder)
	}
	if cfg.Preset() != PresetMedium {
		t.Errorf("preset = %q, want medium", cfg.Preset())
	}
	if cfg.BitRate() != DefaultBitRate {
		t.Errorf("bit rate = %q, want %q", cfg.BitRate(), DefaultBitRate)
	}
	if !slices.Equal(cfg.Style(), DefaultStyle()) {
		t.Errorf("style = %q, want default", cfg.Style())
	}
}

func TestNewEncodeConfigBitRateVerbatim(t *testing.T) {
	for _, rate := range []string{"3M", "2500k", "weird-token"} {
		if got := NewEncodeConfig("gpu", "fast", rate, nil).BitRate(); got != rate {
			t.Errorf("bit rate %q became %q", rate, got)
		}
	}
}

func TestEncodeConfigIsImmutable(t *testing.T) {
	style := []string{"FontName=Arial", "FontSize=30"}
	cfg := NewEncodeConfig("cpu", "fast", "1M", style)

	style[0] = "FontName=Comic Sans"
	returned := cfg.Style()
	returned[1] = "FontSize=1"

	if got := cfg.StyleString(); got != "FontName=Arial,FontSize=30" {
		t.Errorf("style changed through an alias: %q", got)
	}
}

func TestDefaultStyleIsFresh(t *testing.T) {
	a := DefaultStyle()
	a[0] = "changed"
	if DefaultStyle()[0] == "changed" {
		t.Error("DefaultStyle returned shared storage")
	}
}

func TestParseStyle(t *testing.T) {
	got := ParseStyle(" FontName=Arial, FontSize=20 ,,Outline=1 ")
	want := []string{"FontName=Arial", "FontSize=20", "Outline=1"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseStyle = %q, want %q", got, want)
	}
	if ParseStyle("") != nil {
		t.Error("expected nil for empty input")
	}
}
