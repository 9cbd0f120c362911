package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	c := s.Scene.Controls
	if c.Tessellation != 5 || c.Color != (Color{255, 0, 0, 1}) {
		t.Errorf("default controls = %+v", c)
	}
	if s.Scene.ClearColor != [4]float32{0.2, 0.2, 0.2, 1} {
		t.Errorf("clear color = %v", s.Scene.ClearColor)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s != Defaults() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		file string
		body string
	}{
		{"settings.json", `{"window":{"width":800,"height":600},"scene":{"controls":{"tessellations":3,"color":[0,128,255,0.5]}},"server":{"enabled":true}}`},
		{"settings.yaml", "window:\n  width: 800\n  height: 600\nscene:\n  controls:\n    tessellations: 3\n    color: [0, 128, 255, 0.5]\nserver:\n  enabled: true\n"},
		{"settings.yml", "window: {width: 800, height: 600}\nscene: {controls: {tessellations: 3, color: [0, 128, 255, 0.5]}}\nserver: {enabled: true}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			s, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if s.Window.Width != 800 || s.Window.Height != 600 {
				t.Errorf("window = %+v", s.Window)
			}
			if s.Scene.Controls.Tessellation != 3 {
				t.Errorf("tessellation = %d", s.Scene.Controls.Tessellation)
			}
			if s.Scene.Controls.Color != (Color{0, 128, 255, 0.5}) {
				t.Errorf("color = %v", s.Scene.Controls.Color)
			}
			// Fields absent from the file keep their defaults.
			if s.Scene.Controls.VertexShader != "fireball" || s.Server.Addr != "localhost:8080" {
				t.Errorf("defaults lost: %+v", s)
			}
			if !s.Server.Enabled {
				t.Error("server.enabled not read")
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want error
	}{
		{"tessellation too high", "s.json", `{"scene":{"controls":{"tessellations":9}}}`, ErrInvalidTessellation},
		{"negative tessellation", "s.yaml", "scene:\n  controls:\n    tessellations: -1\n", ErrInvalidTessellation},
		{"bad alpha", "s.json", `{"scene":{"controls":{"color":[0,0,0,2]}}}`, ErrInvalidColor},
		{"three color components", "s.json", `{"scene":{"controls":{"color":[0,255,0]}}}`, ErrInvalidColor},
		{"five color components", "s.json", `{"scene":{"controls":{"color":[0,255,0,1,1]}}}`, ErrInvalidColor},
		{"short yaml color", "s.yaml", "scene:\n  controls:\n    color: [0, 255, 0]\n", ErrInvalidColor},
		{"bad format", "s.toml", "x = 1", nil},
		{"bad json", "s.json", `{"window":`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTessellationBounds(t *testing.T) {
	for level := -3; level <= 12; level++ {
		err := ValidateTessellation(level)
		valid := level >= 0 && level <= 8
		if valid != (err == nil) {
			t.Errorf("ValidateTessellation(%d) = %v", level, err)
		}
		if got := ClampTessellation(level); ValidateTessellation(got) != nil {
			t.Errorf("ClampTessellation(%d) = %d out of range", level, got)
		} else if valid && got != level {
			t.Errorf("ClampTessellation(%d) = %d changed a valid level", level, got)
		}
	}
}

func TestColorNormalized(t *testing.T) {
	tests := []struct {
		in   Color
		want mgl32.Vec4
	}{
		{Color{255, 0, 0, 1}, mgl32.Vec4{1, 0, 0, 1}},
		{Color{0, 51, 255, 0.5}, mgl32.Vec4{0, 0.2, 1, 0.5}},
		{Color{300, -5, 0, 7}, mgl32.Vec4{1, 0, 0, 1}},
	}
	for _, tc := range tests {
		if got := tc.in.Normalized(); !got.ApproxEqualThreshold(tc.want, 1e-6) {
			t.Errorf("Normalized(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
