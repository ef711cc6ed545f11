package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// probability that a simulated image "contains" food
const simulatedFoodChance = 0.7

type calorieRange struct {
	name     string
	min, max int
}

var simulatedMenu = []calorieRange{
	{"sandwich", 300, 500},
	{"salad", 150, 300},
	{"pasta", 400, 700},
	{"fruit", 80, 150},
	{"pizza", 250, 400},
	{"burger", 500, 800},
	{"coffee", 5, 150},
	{"cake", 300, 500},
	{"bread", 80, 200},
	{"rice", 150, 300},
	{"chicken", 200, 400},
	{"vegetables", 50, 150},
	{"soup", 100, 300},
	{"steak", 300, 600},
	{"fish", 200, 400},
}

// SimulatedDetector invents detections for demos. Each file gets its own
// generator seeded from (seed, file name), so a batch is reproducible no
// matter how it is spread across workers.
type SimulatedDetector struct {
	seed int64
}

// a nil seed picks a random one
func NewSimulatedDetector(seed *int64) *SimulatedDetector {
	s := rand.Int63()
	if seed != nil {
		s = *seed
	}
	return &SimulatedDetector{seed: s}
}

func (d *SimulatedDetector) Name() string { return providerSimulated }

func (d *SimulatedDetector) rngFor(path string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(filepath.Base(path)))
	return rand.New(rand.NewSource(d.seed ^ int64(h.Sum64())))
}

func (d *SimulatedDetector) Detect(ctx context.Context, path string) (*Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, g, b, err := meanColor(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("simulated analysis", "file", filepath.Base(path), "r", r, "g", g, "b", b)

	return d.generate(d.rngFor(path)), nil
}

func (d *SimulatedDetector) generate(rng *rand.Rand) *Detection {
	if rng.Float64() >= simulatedFoodChance {
		return &Detection{Items: []FoodItem{}}
	}

	count := 1 + rng.Intn(3)
	detection := &Detection{FoodDetected: true}
	for _, idx := range rng.Perm(len(simulatedMenu))[:count] {
		food := simulatedMenu[idx]
		calories := food.min + rng.Intn(food.max-food.min+1)
		detection.Items = append(detection.Items, FoodItem{Name: food.name, Calories: calories})
		detection.TotalCalories += calories
	}
	return detection
}

// mean channel values over a 200x200 downscale, logged for debugging only
func meanColor(path string) (r, g, b float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("decoding image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var rs, gs, bs float64
	pixels := 0
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		rs += float64(dst.Pix[i])
		gs += float64(dst.Pix[i+1])
		bs += float64(dst.Pix[i+2])
		pixels++
	}
	n := float64(pixels)
	return rs / n, gs / n, bs / n, nil
}
