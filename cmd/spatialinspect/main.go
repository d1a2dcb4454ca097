package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"

	"github.com/draftbench/spatial"
)

// entity is a synthetic stand-in for a drawable scene object.
type entity struct {
	Kind  string
	Layer string
}

var entityKinds = []string{"line", "arc", "polygon", "text"}

func main() {
	godotenv.Load()

	kind := flag.String("kind", envOr("SPATIAL_KIND", "auto"), "index kind: auto, quadtree, grid, rtree")
	count := flag.Int("count", envInt("SPATIAL_COUNT", 2000), "number of synthetic entities")
	queries := flag.Int("queries", envInt("SPATIAL_QUERIES", 500), "number of sample queries per operation")
	width := flag.Float64("width", 10000, "region width")
	height := flag.Float64("height", 10000, "region height")
	seed := flag.Int64("seed", time.Now().Unix(), "entity generator seed")
	flag.Parse()

	log.SetOutput(colorable.NewColorableStdout())
	log.SetFormatter(&log.TextFormatter{ForceColors: true})
	log.SetLevel(log.DebugLevel)

	region := spatial.Bounds{MaxX: *width, MaxY: *height}
	factory := spatial.Factory[entity]{}
	idx, err := factory.New(spatial.Config{Region: region, Kind: spatial.IndexKind(*kind)})
	if err != nil {
		log.Fatalf("Could not build index: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	inserted := 0
	insertStart := time.Now()
	for i := 0; i < *count; i++ {
		k := entityKinds[rng.Intn(len(entityKinds))]
		if idx.Insert(spatial.Item[entity]{
			ID:      fmt.Sprintf("%s-%d", k, i),
			Bounds:  randomBounds(rng, region),
			Payload: entity{Kind: k, Layer: fmt.Sprintf("layer-%d", rng.Intn(8))},
		}) {
			inserted++
		}
	}
	log.Printf("Inserted %d/%d entities in %s", inserted, *count, time.Since(insertStart))

	hits := 0
	hitStart := time.Now()
	for i := 0; i < *queries; i++ {
		p := randomPoint(rng, region)
		if r := idx.HitTest(p, 5); r != nil {
			hits++
		}
	}
	log.Printf("Hit tests: %d/%d hits in %s", hits, *queries, time.Since(hitStart))

	windowTotal, crossingTotal := 0, 0
	selStart := time.Now()
	for i := 0; i < *queries; i++ {
		marquee := randomBounds(rng, region)
		windowTotal += len(idx.QuerySelection(marquee, spatial.SelectionWindow))
		crossingTotal += len(idx.QuerySelection(marquee, spatial.SelectionCrossing))
	}
	log.Printf("Selections: window %d, crossing %d in %s", windowTotal, crossingTotal, time.Since(selStart))

	closestStart := time.Now()
	for i := 0; i < *queries; i++ {
		idx.QueryClosest(randomPoint(rng, region))
	}
	log.Printf("Closest queries in %s", time.Since(closestStart))

	stats := idx.Stats()
	debug := idx.Debug()
	log.WithFields(log.Fields{
		"items":     stats.Items,
		"memory":    stats.MemoryBytes,
		"lastQuery": stats.LastQuery,
	}).Printf("Stats")
	log.WithFields(log.Fields{
		"kind":  debug.Kind,
		"nodes": debug.Nodes,
		"cells": debug.Cells,
		"depth": debug.Depth,
	}).Printf("Structure")
}

func randomBounds(rng *rand.Rand, region spatial.Bounds) spatial.Bounds {
	w := rng.Float64() * region.Width() / 50
	h := rng.Float64() * region.Height() / 50
	x := region.MinX + rng.Float64()*(region.Width()-w)
	y := region.MinY + rng.Float64()*(region.Height()-h)
	return spatial.Bounds{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

func randomPoint(rng *rand.Rand, region spatial.Bounds) spatial.Point {
	return spatial.Point{
		region.MinX + rng.Float64()*region.Width(),
		region.MinY + rng.Float64()*region.Height(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
