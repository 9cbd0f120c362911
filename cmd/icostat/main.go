// Command icostat prints per-level icosphere statistics and checks the
// generated meshes against the closed-form counts.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"icoviewer/core"
)

type levelStats struct {
	Level          int     `yaml:"level"`
	Vertices       int     `yaml:"vertices"`
	Triangles      int     `yaml:"triangles"`
	MaxRadiusError float64 `yaml:"maxRadiusError"`
	Duplicates     int     `yaml:"duplicates"`
	BuildMs        float64 `yaml:"buildMs"`
	OK             bool    `yaml:"ok"`
}

func main() {
	var (
		maxLevel = flag.Int("max", core.MaxIcosphereLevel, "Highest level to build")
		radius   = flag.Float64("radius", 1, "Sphere radius")
		asYAML   = flag.Bool("yaml", false, "Print YAML instead of a table")
	)
	flag.Parse()

	if *maxLevel < 0 || *maxLevel > core.MaxIcosphereLevel {
		fmt.Fprintf(os.Stderr, "level must be within 0..%d\n", core.MaxIcosphereLevel)
		os.Exit(2)
	}

	var rows []levelStats
	failed := false
	for level := 0; level <= *maxLevel; level++ {
		row, err := measure(level, *radius)
		if err != nil {
			fmt.Fprintf(os.Stderr, "level %d: %v\n", level, err)
			os.Exit(1)
		}
		failed = failed || !row.OK
		rows = append(rows, row)
	}

	if *asYAML {
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		enc.Close()
	} else {
		fmt.Println("=== Icosphere Statistics ===")
		fmt.Printf("%5s %10s %10s %12s %5s %10s\n", "level", "vertices", "triangles", "radius err", "dups", "build")
		for _, r := range rows {
			status := "ok"
			if !r.OK {
				status = "FAIL"
			}
			fmt.Printf("%5d %10d %10d %12.2e %5d %8.2fms %s\n",
				r.Level, r.Vertices, r.Triangles, r.MaxRadiusError, r.Duplicates, r.BuildMs, status)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func measure(level int, radius float64) (levelStats, error) {
	sphere, err := core.NewIcosphere(core.Vector3{}, radius, level)
	if err != nil {
		return levelStats{}, err
	}

	start := time.Now()
	geom := sphere.Build()
	elapsed := time.Since(start)

	if err := geom.Validate(); err != nil {
		return levelStats{}, err
	}

	row := levelStats{
		Level:     level,
		Vertices:  geom.VertexCount(),
		Triangles: geom.TriangleCount(),
		BuildMs:   float64(elapsed.Microseconds()) / 1000,
	}

	seen := make(map[[3]int64]struct{}, row.Vertices)
	for i := 0; i < row.Vertices; i++ {
		p := geom.Position(i)
		if e := math.Abs(p.Length() - radius); e > row.MaxRadiusError {
			row.MaxRadiusError = e
		}
		key := [3]int64{
			int64(math.Round(p.X * 1e5)),
			int64(math.Round(p.Y * 1e5)),
			int64(math.Round(p.Z * 1e5)),
		}
		if _, dup := seen[key]; dup {
			row.Duplicates++
		}
		seen[key] = struct{}{}
	}

	row.OK = row.Vertices == core.IcosphereVertexCount(level) &&
		row.Triangles == core.IcosphereTriangleCount(level) &&
		row.Duplicates == 0 &&
		row.MaxRadiusError < 1e-4*radius
	return row, nil
}
