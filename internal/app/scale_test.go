package app

import (
	"testing"

	"neuron-tracer/internal/config"
	"neuron-tracer/internal/fileio"
)

func TestScaleDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewState(cfg, fileio.NewManager(nil), quietLogger())

	sc := s.Scale()
	if sc.LengthNM != cfg.View.ScaleBarLength {
		t.Errorf("LengthNM = %d, want %d", sc.LengthNM, cfg.View.ScaleBarLength)
	}
	if sc.Units != cfg.View.ScaleBarUnits {
		t.Errorf("Units = %q, want %q", sc.Units, cfg.View.ScaleBarUnits)
	}
}

func TestScaleUnitsRoundTrip(t *testing.T) {
	s := NewState(config.DefaultConfig(), fileio.NewManager(nil), quietLogger())

	if err := s.SetScaleLength(5, config.UnitMicrons); err != nil {
		t.Fatalf("SetScaleLength(5, um): %v", err)
	}
	if got := s.ScaleLength(config.UnitNanometres); got != 5000 {
		t.Errorf("nm read = %d, want 5000", got)
	}
	if got := s.ScaleLength(config.UnitMicrons); got != 5 {
		t.Errorf("um read = %d, want 5", got)
	}

	// A non-round nanometre length truncates when read in microns.
	if err := s.SetScaleLength(5500, config.UnitNanometres); err != nil {
		t.Fatalf("SetScaleLength(5500, nm): %v", err)
	}
	if got := s.ScaleLength(config.UnitMicrons); got != 5 {
		t.Errorf("um read of 5500 nm = %d, want 5", got)
	}
	if got := s.ScaleLength(config.UnitNanometres); got != 5500 {
		t.Errorf("nm read = %d, want 5500", got)
	}
}

func TestScaleLabel(t *testing.T) {
	tests := []struct {
		lengthNM int64
		units    string
		want     string
	}{
		{5000, config.UnitMicrons, "5 µm"},
		{5000, config.UnitNanometres, "5000 nm"},
		{5500, config.UnitMicrons, "5 µm"},
		{250, config.UnitNanometres, "250 nm"},
	}
	for _, tt := range tests {
		sc := ScaleSettings{LengthNM: tt.lengthNM, Units: tt.units}
		if got := sc.Label(); got != tt.want {
			t.Errorf("Label(%d, %s) = %q, want %q", tt.lengthNM, tt.units, got, tt.want)
		}
	}
}

func TestScaleRejectsBadInput(t *testing.T) {
	s := NewState(config.DefaultConfig(), fileio.NewManager(nil), quietLogger())

	if err := s.SetScaleLength(0, config.UnitNanometres); err == nil {
		t.Error("SetScaleLength accepted zero")
	}
	if err := s.SetScaleLength(-3, config.UnitMicrons); err == nil {
		t.Error("SetScaleLength accepted a negative length")
	}
	if err := s.SetScaleLength(5, "furlong"); err == nil {
		t.Error("SetScaleLength accepted unknown units")
	}
	if err := s.SetScaleUnits("furlong"); err == nil {
		t.Error("SetScaleUnits accepted unknown units")
	}
	before := config.DefaultConfig().View.ScaleBarLength
	if got := s.ScaleLength(config.UnitNanometres); got != before {
		t.Errorf("rejected input changed the stored length to %d", got)
	}
}

func TestScaleChangeEmitsEvent(t *testing.T) {
	s := NewState(config.DefaultConfig(), fileio.NewManager(nil), quietLogger())

	var got []ScaleSettings
	s.On(EventScaleChanged, func(data interface{}) {
		got = append(got, data.(ScaleSettings))
	})

	if err := s.SetScaleLength(7, config.UnitMicrons); err != nil {
		t.Fatal(err)
	}
	if err := s.SetScaleUnits(config.UnitNanometres); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("EventScaleChanged fired %d times, want 2", len(got))
	}
	if got[0].LengthNM != 7000 || got[0].Units != config.UnitMicrons {
		t.Errorf("first event = %+v, want 7000 nm in um", got[0])
	}
	if got[1].LengthNM != 7000 || got[1].Units != config.UnitNanometres {
		t.Errorf("second event = %+v, want 7000 nm in nm", got[1])
	}
}
