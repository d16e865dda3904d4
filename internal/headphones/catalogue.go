// Package headphones supplies inverse-response compensation profiles for
// known headphone models. The engine consumes these as-is; an unknown model
// falls back to nil, meaning no compensation.
package headphones

import "github.com/sonicmatch/soundcheck/internal/dsp"

// Model identifies a catalogue entry.
type Model struct {
	Brand string
	Model string
}

// Gains are in dB and approximate the inverse of each model's measured
// frequency response deviation, so the test plays back closer to neutral.
var catalogue = map[Model]dsp.CompensationEQ{
	{"Sony", "WH-1000XM5"}:           {Bass: -3.5, LowMids: -1.0, Mids: 0.5, UpperMids: 1.0, Treble: 1.5, Airiness: 2.0},
	{"Bose", "QuietComfort Ultra"}:   {Bass: -3.0, LowMids: -0.5, Mids: 0.0, UpperMids: 1.0, Treble: 1.0, Airiness: 1.5},
	{"Apple", "AirPods Max"}:         {Bass: -2.0, LowMids: -0.5, Mids: 0.0, UpperMids: 0.5, Treble: 1.0, Airiness: 1.0},
	{"Sennheiser", "HD 560S"}:        {Bass: 1.0, LowMids: 0.0, Mids: 0.0, UpperMids: -0.5, Treble: -0.5, Airiness: 0.5},
	{"Sennheiser", "Momentum 4"}:     {Bass: -3.0, LowMids: -1.0, Mids: 0.5, UpperMids: 0.5, Treble: 1.0, Airiness: 1.5},
	{"Beyerdynamic", "DT 770 Pro"}:   {Bass: -1.5, LowMids: 0.5, Mids: 1.0, UpperMids: 0.0, Treble: -3.0, Airiness: -2.0},
	{"Audio-Technica", "ATH-M50x"}:   {Bass: -2.0, LowMids: 0.5, Mids: 0.5, UpperMids: -0.5, Treble: -1.5, Airiness: 0.0},
	{"HiFiMan", "Sundara"}:           {Bass: 1.5, LowMids: 0.5, Mids: 0.0, UpperMids: -0.5, Treble: -0.5, Airiness: -0.5},
	{"Samsung", "Galaxy Buds2 Pro"}:  {Bass: -2.5, LowMids: -0.5, Mids: 0.0, UpperMids: 0.5, Treble: 0.5, Airiness: 1.0},
	{"Beats", "Studio Pro"}:          {Bass: -4.0, LowMids: -1.5, Mids: 0.0, UpperMids: 1.0, Treble: 1.5, Airiness: 1.5},
}

// Lookup returns the compensation profile for a brand+model, or nil when the
// model is unknown (neutral playback).
func Lookup(brand, model string) *dsp.CompensationEQ {
	if eq, ok := catalogue[Model{Brand: brand, Model: model}]; ok {
		// Copy so callers cannot mutate the catalogue.
		out := eq
		return &out
	}
	return nil
}

// Models lists the catalogue entries, for UI pickers.
func Models() []Model {
	out := make([]Model, 0, len(catalogue))
	for m := range catalogue {
		out = append(out, m)
	}
	return out
}
