package export

import (
	"strings"
	"testing"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/runner"
	"github.com/san-kum/kinetree/internal/scene"
	"github.com/san-kum/kinetree/internal/spatial"
)

func pendulumSamples(t *testing.T) (*scene.Scene, []runner.Sample) {
	t.Helper()
	sc, err := scene.Build(config.GetPreset("pendulum"))
	if err != nil {
		t.Fatal(err)
	}
	samples := []runner.Sample{
		{T: 0, Q: []float64{0.0}, U: []float64{1}},
		{T: 0.5, Q: []float64{0.5}, U: []float64{1}},
		{T: 1.0, Q: []float64{1.0}, U: []float64{1}, PerrNorm: 1e-6},
	}
	return sc, samples
}

func TestStationPathSVG(t *testing.T) {
	sc, samples := pendulumSamples(t)
	svg, err := StationPathSVG(sc, samples, "bob", spatial.Vec3{}, 400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, `<?xml`) || !strings.Contains(svg, "<path") {
		t.Errorf("malformed svg:\n%s", svg)
	}
	// three samples, three path points
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}

	if _, err := StationPathSVG(sc, samples, "nope", spatial.Vec3{}, 400, 300); err == nil {
		t.Error("expected error for unknown body")
	}
}

func TestCoordinateSVG(t *testing.T) {
	_, samples := pendulumSamples(t)
	svg, err := CoordinateSVG(samples, 0, 400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, "stroke") {
		t.Errorf("malformed svg:\n%s", svg)
	}
	if _, err := CoordinateSVG(samples, 7, 400, 300); err == nil {
		t.Error("expected range error")
	}
}

func TestViolationSVGEmptyInput(t *testing.T) {
	if svg := ViolationSVG(nil, 400, 300); svg != "" {
		t.Errorf("expected empty string for no samples, got %q", svg)
	}
}
