package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Window WindowSettings `json:"window" yaml:"window"`
	Scene  SceneSettings  `json:"scene" yaml:"scene"`
	Camera CameraSettings `json:"camera" yaml:"camera"`
	Server ServerSettings `json:"server" yaml:"server"`
}

type WindowSettings struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Title  string `json:"title" yaml:"title"`
	VSync  bool   `json:"vsync" yaml:"vsync"`
}

type SceneSettings struct {
	Controls   Controls   `json:"controls" yaml:"controls"`
	Radius     float64    `json:"radius" yaml:"radius"`
	Effect     [4]float32 `json:"effect" yaml:"effect"`
	ClearColor [4]float32 `json:"clearColor" yaml:"clearColor"`
	// DrawExtras adds the square and cube to the draw list.
	DrawExtras bool `json:"drawExtras" yaml:"drawExtras"`
}

type CameraSettings struct {
	Position   [3]float32 `json:"position" yaml:"position"`
	Target     [3]float32 `json:"target" yaml:"target"`
	FovDegrees float32    `json:"fovDegrees" yaml:"fovDegrees"`
	Near       float32    `json:"near" yaml:"near"`
	Far        float32    `json:"far" yaml:"far"`
}

type ServerSettings struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	Addr            string `json:"addr" yaml:"addr"`
	StatsIntervalMs int    `json:"statsIntervalMs" yaml:"statsIntervalMs"`
}

func Defaults() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "icoviewer",
			VSync:  true,
		},
		Scene: SceneSettings{
			Controls:   DefaultControls(),
			Radius:     1,
			Effect:     [4]float32{1, 1, 0, 0},
			ClearColor: [4]float32{0.2, 0.2, 0.2, 1},
		},
		Camera: CameraSettings{
			Position:   [3]float32{0, 0, 5},
			Target:     [3]float32{0, 0, 0},
			FovDegrees: 45,
			Near:       0.1,
			Far:        1000,
		},
		Server: ServerSettings{
			Enabled:         false,
			Addr:            "localhost:8080",
			StatsIntervalMs: 500,
		},
	}
}

// Load reads settings from path on top of the defaults. A .json file is
// decoded as JSON, .yaml/.yml as YAML. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no settings file found, using defaults", "path", path)
			return settings, nil
		}
		return settings, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("error parsing %s: %w", path, err)
		}
	default:
		return settings, fmt.Errorf("unsupported settings format %q", ext)
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	slog.Info("loaded settings",
		"path", path,
		"tessellation", settings.Scene.Controls.Tessellation,
		"vertexShader", settings.Scene.Controls.VertexShader,
		"fragmentShader", settings.Scene.Controls.FragmentShader)
	return settings, nil
}

func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	if err := s.Scene.Controls.Validate(); err != nil {
		return err
	}
	if !(s.Scene.Radius > 0) {
		return fmt.Errorf("scene radius %v must be positive", s.Scene.Radius)
	}
	c := s.Camera
	if c.FovDegrees <= 0 || c.FovDegrees >= 180 {
		return fmt.Errorf("camera fov %v not in (0, 180)", c.FovDegrees)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("camera clip range [%v, %v] invalid", c.Near, c.Far)
	}
	if c.Position == c.Target {
		return errors.New("camera position equals target")
	}
	if s.Server.Enabled && s.Server.Addr == "" {
		return errors.New("server enabled without an address")
	}
	return nil
}

func (s SceneSettings) EffectVec() mgl32.Vec4 {
	return mgl32.Vec4(s.Effect)
}

func (c CameraSettings) PositionVec() mgl32.Vec3 { return mgl32.Vec3(c.Position) }
func (c CameraSettings) TargetVec() mgl32.Vec3   { return mgl32.Vec3(c.Target) }
