// Command snapshotpng rasterizes one JSON-encoded engine.GameState to a
// PNG for developer debugging. It is a standalone consumer of snapshots,
// not the graphical renderer — it never touches the simulation core
// beyond the snapshot types, grounded on the teacher's use of
// github.com/fogleman/gg for frame composition in internal/streaming.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"math"
	"os"

	"github.com/fogleman/gg"

	"robowar/internal/engine"
)

func main() {
	var (
		inPath  = flag.String("in", "", "path to a JSON GameState snapshot (default: stdin)")
		outPath = flag.String("out", "snapshot.png", "output PNG path")
		width   = flag.Float64("width", 800, "arena width in world units (one PNG pixel per unit)")
		height  = flag.Float64("height", 600, "arena height in world units (one PNG pixel per unit)")
	)
	flag.Parse()

	state, err := readSnapshot(*inPath)
	if err != nil {
		log.Fatalf("❌ reading snapshot: %v", err)
	}

	if err := render(state, *width, *height, *outPath); err != nil {
		log.Fatalf("❌ rendering snapshot: %v", err)
	}
	log.Printf("✅ wrote %s", *outPath)
}

func readSnapshot(path string) (engine.GameState, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return engine.GameState{}, err
		}
		defer f.Close()
		r = f
	}

	var state engine.GameState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return engine.GameState{}, err
	}
	return state, nil
}

// render draws robots as circles with a heading tick, bullets as dots,
// mines as squares, and cookies as triangles onto a gg.Context sized to
// the arena, matching the teacher's shape vocabulary for its own
// stream overlay (circle bodies, small marker glyphs for projectiles
// and pickups).
func render(state engine.GameState, width, height float64, outPath string) error {
	dc := gg.NewContext(int(width), int(height))
	dc.SetRGB(0.07, 0.07, 0.09)
	dc.Clear()

	for _, m := range state.Mines {
		dc.SetRGB(0.8, 0.2, 0.2)
		dc.DrawRectangle(m.X-8, m.Y-8, 16, 16)
		dc.Fill()
	}
	for _, c := range state.Cookies {
		dc.SetRGB(0.9, 0.7, 0.2)
		drawTriangle(dc, c.X, c.Y, 10)
		dc.Fill()
	}
	for _, b := range state.Bullets {
		dc.SetRGB(1, 1, 0.4)
		dc.DrawCircle(b.X, b.Y, 3)
		dc.Fill()
	}
	for _, r := range state.Robots {
		drawRobot(dc, r)
	}

	return dc.SavePNG(outPath)
}

func drawRobot(dc *gg.Context, r engine.RobotState) {
	if r.Alive {
		dc.SetRGB(0.3, 0.8, 0.4)
	} else {
		dc.SetRGB(0.4, 0.4, 0.4)
	}
	dc.DrawCircle(r.X, r.Y, 18)
	dc.Fill()

	rad := (r.Heading - 90) * math.Pi / 180
	tx := r.X + math.Cos(rad)*18
	ty := r.Y + math.Sin(rad)*18
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawLine(r.X, r.Y, tx, ty)
	dc.Stroke()

	gunRad := (r.GunHeading - 90) * math.Pi / 180
	gx := r.X + math.Cos(gunRad)*24
	gy := r.Y + math.Sin(gunRad)*24
	dc.SetRGB(0.9, 0.3, 0.3)
	dc.DrawLine(r.X, r.Y, gx, gy)
	dc.Stroke()
}

func drawTriangle(dc *gg.Context, cx, cy, r float64) {
	dc.MoveTo(cx, cy-r)
	dc.LineTo(cx-r, cy+r)
	dc.LineTo(cx+r, cy+r)
	dc.ClosePath()
}
