// Package export renders saved trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/kinetree/internal/runner"
	"github.com/san-kum/kinetree/internal/scene"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

type point struct{ x, y float64 }

// StationPathSVG replays the samples through the scene's kinematics and
// traces one body station's path in the ground X-Y plane.
func StationPathSVG(sc *scene.Scene, samples []runner.Sample, bodyName string, station spatial.Vec3, width, height int) (string, error) {
	body, ok := sc.Body(bodyName)
	if !ok {
		return "", fmt.Errorf("export: unknown body %q", bodyName)
	}
	points := make([]point, 0, len(samples))
	for _, sample := range samples {
		if err := sc.State.SetQ(sample.Q); err != nil {
			return "", err
		}
		if err := sc.Sys.Realize(sc.State, stage.Position); err != nil {
			return "", err
		}
		loc, err := body.LocatePointOnGround(sc.State, station)
		if err != nil {
			return "", err
		}
		points = append(points, point{loc[0], loc[1]})
	}
	return polyline(points, width, height, "#00ff88"), nil
}

// CoordinateSVG plots one generalized coordinate against time.
func CoordinateSVG(samples []runner.Sample, coord, width, height int) (string, error) {
	if len(samples) > 0 && (coord < 0 || coord >= len(samples[0].Q)) {
		return "", fmt.Errorf("export: coordinate %d out of range [0,%d)", coord, len(samples[0].Q))
	}
	points := make([]point, 0, len(samples))
	for _, sample := range samples {
		points = append(points, point{sample.T, sample.Q[coord]})
	}
	return polyline(points, width, height, "#58a6ff"), nil
}

// ViolationSVG plots the constraint violation norm against time.
func ViolationSVG(samples []runner.Sample, width, height int) string {
	points := make([]point, 0, len(samples))
	for _, sample := range samples {
		points = append(points, point{sample.T, sample.PerrNorm})
	}
	return polyline(points, width, height, "#ff7b72")
}

func polyline(points []point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		minX, maxX = min(minX, p.x), max(maxX, p.x)
		minY, maxY = min(minY, p.y), max(maxY, p.y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.x - minX) / rangeX * float64(width)
		y := float64(height) - (p.y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
