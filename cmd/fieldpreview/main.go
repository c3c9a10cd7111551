// Noise field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	fieldSize    = 256
	panelWidth   = windowWidth - previewSize - 30
)

// Diverging ramp endpoints for negative and positive bias.
var (
	rampLow  = colorful.Color{R: 0.16, G: 0.35, B: 0.78}
	rampMid  = colorful.Color{R: 0.08, G: 0.08, B: 0.08}
	rampHigh = colorful.Color{R: 0.95, G: 0.55, B: 0.15}
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Screen.Width = fieldSize
	cfg.Screen.Height = fieldSize

	rl.InitWindow(windowWidth, windowHeight, "Noise Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(fieldSize, fieldSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var (
		seed       int64 = 12345
		channel          = systems.ChannelX
		field      *systems.NoiseField
		needsRegen = true
		pixels     = make([]color.RGBA, fieldSize*fieldSize)
	)

	for !rl.WindowShouldClose() {
		if needsRegen {
			field, err = game.NewField(cfg, rand.New(rand.NewSource(seed)))
			if err != nil {
				slog.Error("failed to generate field", "error", err)
				os.Exit(1)
			}
			updateTexture(texture, pixels, field, channel)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: fieldSize, Height: fieldSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		mean, std := channelStats(field.Histogram(channel))
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Sample mean: %+.3f  Std: %.3f", mean, std), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Kind: %s  Octaves: %d  Seed: %d", cfg.Noise.Kind, cfg.Noise.Octaves, seed), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Noise Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Octaves slider
		rl.DrawText("Octaves (layers composited)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newOctaves := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", fmt.Sprint(config.MaxOctaves),
			float32(cfg.Noise.Octaves), 1, config.MaxOctaves,
		)
		rl.DrawText(fmt.Sprintf("%d", cfg.Noise.Octaves), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newOctaves) != cfg.Noise.Octaves {
			cfg.Noise.Octaves = int(newOctaves)
			needsRegen = true
		}
		panelY += 35

		// Simplex scale slider
		rl.DrawText("Simplex scale (cycles per pixel)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.002", "0.1",
			float32(cfg.Noise.SimplexScale), 0.002, 0.1,
		)
		rl.DrawText(fmt.Sprintf("%.3f", cfg.Noise.SimplexScale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newScale) != cfg.Noise.SimplexScale {
			cfg.Noise.SimplexScale = float64(newScale)
			if cfg.Noise.Kind == "simplex" {
				needsRegen = true
			}
		}
		panelY += 35

		// Seed slider
		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != seed {
			seed = int64(newSeed)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(cfg.Noise.Kind == "simplex", "Octave", "Simplex")) {
			if cfg.Noise.Kind == "simplex" {
				cfg.Noise.Kind = "octave"
			} else {
				cfg.Noise.Kind = "simplex"
			}
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(channel == systems.ChannelX, "Show Y", "Show X")) {
			if channel == systems.ChannelX {
				channel = systems.ChannelY
			} else {
				channel = systems.ChannelX
			}
			updateTexture(texture, pixels, field, channel)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = rand.Int63n(100000)
			needsRegen = true
		}

		rl.EndDrawing()
	}
}

func toggleText(on bool, ifOn, ifOff string) string {
	if on {
		return ifOn
	}
	return ifOff
}

// channelStats returns the mean and standard deviation of the normalized
// samples (value/127 - 1) described by a channel histogram.
func channelStats(hist [256]int) (mean, std float64) {
	x := make([]float64, len(hist))
	w := make([]float64, len(hist))
	for v, n := range hist {
		x[v] = float64(v)/127 - 1
		w[v] = float64(n)
	}
	return stat.MeanStdDev(x, w)
}

// updateTexture renders one field channel through the diverging ramp.
func updateTexture(texture rl.Texture2D, pixels []color.RGBA, field *systems.NoiseField, ch systems.Channel) {
	for y := 0; y < fieldSize; y++ {
		for x := 0; x < fieldSize; x++ {
			v := field.Sample(float64(x), float64(y), ch)
			var c colorful.Color
			if v < 0 {
				c = rampMid.BlendLab(rampLow, -v)
			} else {
				c = rampMid.BlendLab(rampHigh, v)
			}
			r, g, b := c.Clamped().RGB255()
			pixels[y*fieldSize+x] = color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
	rl.UpdateTexture(texture, pixels)
}
