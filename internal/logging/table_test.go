package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive_inf", math.Inf(1), 2, MissingValue},
		{"negative_inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetric(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"positive", 2.5, 1, "+2.5"},
		{"negative", -1.2, 1, "-1.2"},
		{"zero", 0.0, 1, "+0.0"},
		{"nan", math.NaN(), 1, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricSigned(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetricSigned(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestMetricTable(t *testing.T) {
	t.Run("empty table renders nothing", func(t *testing.T) {
		table := NewMetricTable("Value")
		if got := table.String(); got != "" {
			t.Errorf("empty table rendered %q", got)
		}
	})

	t.Run("columns align and missing values show placeholder", func(t *testing.T) {
		table := NewMetricTable("Freq", "Gain")
		table.AddRow("Bass shelf", []string{"80 Hz", "+7.2"}, "dB", "")
		table.AddRow("Air shelf", []string{"12000 Hz", ""}, "dB", "")
		out := table.String()

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3 (header + 2 rows):\n%s", len(lines), out)
		}
		if !strings.Contains(lines[0], "Freq") || !strings.Contains(lines[0], "Gain") {
			t.Errorf("header row missing column names: %q", lines[0])
		}
		if !strings.Contains(lines[2], MissingValue) {
			t.Errorf("missing value not rendered as %q: %q", MissingValue, lines[2])
		}
		if strings.Index(lines[1], "dB") != strings.Index(lines[2], "dB") {
			t.Errorf("unit column misaligned:\n%q\n%q", lines[1], lines[2])
		}
	})

	t.Run("interpretation column appears only when present", func(t *testing.T) {
		table := NewMetricTable("Value")
		table.AddRow("Bass", []string{"0.80"}, "", "elevated")
		out := table.String()
		if !strings.Contains(out, "Interpretation") {
			t.Errorf("interpretation header missing:\n%s", out)
		}
		if !strings.Contains(out, "elevated") {
			t.Errorf("interpretation text missing:\n%s", out)
		}

		plain := NewMetricTable("Value")
		plain.AddRow("Bass", []string{"0.80"}, "", "")
		if strings.Contains(plain.String(), "Interpretation") {
			t.Error("interpretation header rendered with no interpretations")
		}
	})
}

func TestPreferenceBar(t *testing.T) {
	t.Run("neutral marks the midpoint", func(t *testing.T) {
		bar := preferenceBar(0.5, 20)
		if len(bar) != 20 {
			t.Fatalf("bar length = %d, want 20", len(bar))
		}
		if bar[10] != '|' {
			t.Errorf("midpoint marker missing: %q", bar)
		}
	})

	t.Run("full and empty", func(t *testing.T) {
		if got := preferenceBar(1.0, 10); strings.Contains(got, ".") {
			t.Errorf("full bar contains gaps: %q", got)
		}
		if got := preferenceBar(0.0, 10); strings.Contains(got, "#") {
			t.Errorf("empty bar contains fill: %q", got)
		}
	})

	t.Run("out of range clamps", func(t *testing.T) {
		if got := preferenceBar(1.5, 10); len(got) != 10 {
			t.Errorf("bar length = %d, want 10", len(got))
		}
	})
}
