// File: internal/actions/coords_test.go
package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToAbsolute(t *testing.T) {
	tests := []struct {
		name          string
		point         LogicalPoint
		width, height int
		wantX, wantY  int
	}{
		{"center of 1080x2340", LogicalPoint{500, 500}, 1080, 2340, 540, 1170},
		{"origin", LogicalPoint{0, 0}, 1080, 2340, 0, 0},
		{"full extent", LogicalPoint{1000, 1000}, 1080, 2340, 1080, 2340},
		{"truncates, never rounds", LogicalPoint{999, 999}, 1080, 2340, 1078, 2337},
		{"small screen", LogicalPoint{333, 667}, 320, 480, 106, 320},
		{"no clamping above range", LogicalPoint{1500, 1200}, 1000, 1000, 1500, 1200},
		{"no clamping below range", LogicalPoint{-100, -50}, 1000, 1000, -100, -50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := ToAbsolute(tc.point, tc.width, tc.height)
			assert.Equal(t, tc.wantX, x)
			assert.Equal(t, tc.wantY, y)
		})
	}
}

// TestToAbsolute_Floor checks the floor property over a grid sweep rather
// than hand-picked points.
func TestToAbsolute_Floor(t *testing.T) {
	const width, height = 1080, 2340
	for lx := 0; lx <= 1000; lx += 37 {
		for ly := 0; ly <= 1000; ly += 91 {
			x, y := ToAbsolute(LogicalPoint{X: float64(lx), Y: float64(ly)}, width, height)
			assert.Equal(t, lx*width/1000, x, "x for logical %d", lx)
			assert.Equal(t, ly*height/1000, y, "y for logical %d", ly)
		}
	}
}
