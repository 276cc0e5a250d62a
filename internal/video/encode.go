package video

import (
	"slices"
	"strings"
)

type Device string

const (
	DeviceGPU Device = "gpu"
	DeviceCPU Device = "cpu"
)

const (
	HardwareEncoder = "h264_nvenc"
	SoftwareEncoder = "libx264"

	PresetFast   = "fast"
	PresetMedium = "medium"
	PresetSlow   = "slow"

	DefaultBitRate = "3M"
)

// DefaultStyle is the force_style directive set used when none is given.
func DefaultStyle() []string {
	return []string{
		"FontName=Microsoft JhengHei",
		"FontSize=14",
		"PrimaryColour=&HFFFFFF",
		"BackColour=&H00000000",
		"BorderStyle=1",
		"Alignment=2",
		"Outline=0.5",
		"MarginV=15",
	}
}

// EncodeConfig holds the normalized burn-in settings. Build it with
// NewEncodeConfig; the zero value is not useful.
type EncodeConfig struct {
	device  Device
	preset  string
	bitRate string
	style   []string
}

// NewEncodeConfig normalizes its inputs: any device other than "gpu" means
// software encoding, presets outside fast/medium/slow become medium, an empty
// bit rate becomes DefaultBitRate and an empty style becomes DefaultStyle.
// The bit rate is otherwise passed through verbatim.
func NewEncodeConfig(device, preset, bitRate string, style []string) EncodeConfig {
	cfg := EncodeConfig{
		device:  DeviceCPU,
		preset:  normalizePreset(preset),
		bitRate: strings.TrimSpace(bitRate),
	}

	if Device(strings.ToLower(strings.TrimSpace(device))) == DeviceGPU {
		cfg.device = DeviceGPU
	}
	if cfg.bitRate == "" {
		cfg.bitRate = DefaultBitRate
	}

	for _, directive := range style {
		if directive = strings.TrimSpace(directive); directive != "" {
			cfg.style = append(cfg.style, directive)
		}
	}
	if len(cfg.style) == 0 {
		cfg.style = DefaultStyle()
	}

	return cfg
}

func normalizePreset(preset string) string {
	switch p := strings.ToLower(strings.TrimSpace(preset)); p {
	case PresetFast, PresetMedium, PresetSlow:
		return p
	default:
		return PresetMedium
	}
}

func (c EncodeConfig) Device() Device { return c.device }

func (c EncodeConfig) Preset() string { return c.preset }

func (c EncodeConfig) BitRate() string { return c.bitRate }

// Encoder is the ffmpeg video encoder selected by the device.
func (c EncodeConfig) Encoder() string {
	if c.device == DeviceGPU {
		return HardwareEncoder
	}
	return SoftwareEncoder
}

// Style returns a copy of the style directives.
func (c EncodeConfig) Style() []string {
	return slices.Clone(c.style)
}

// StyleString joins the style directives with commas.
func (c EncodeConfig) StyleString() string {
	return strings.Join(c.style, ",")
}

// ParseStyle splits a comma separated directive list as accepted on the
// command line.
func ParseStyle(value string) []string {
	var style []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			style = append(style, part)
		}
	}
	return style
}
