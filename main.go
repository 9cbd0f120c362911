package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/config"
	"icoviewer/control"
	"icoviewer/gpu"
	"icoviewer/rendering"
	"icoviewer/rendering/opengl"
	"icoviewer/rendering/shaders"
	"icoviewer/scene"
)

func init() {
	// GLFW event handling must run on the main thread
	runtime.LockOSThread()
}

func main() {
	var (
		configPath   = flag.String("config", "settings.json", "Settings file (.json or .yaml)")
		width        = flag.Int("width", 0, "Window width (overrides settings)")
		height       = flag.Int("height", 0, "Window height (overrides settings)")
		tessellation = flag.Int("tessellation", -1, "Initial icosphere level 0-8 (overrides settings)")
		vertex       = flag.String("vertex", "", "Initial vertex shader variant")
		fragment     = flag.String("fragment", "", "Initial fragment shader variant")
		serve        = flag.Bool("server", false, "Serve the websocket control panel")
		addr         = flag.String("addr", "", "Control panel listen address")
		verbose      = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}
	if *width > 0 {
		settings.Window.Width = *width
	}
	if *height > 0 {
		settings.Window.Height = *height
	}
	if *tessellation >= 0 {
		settings.Scene.Controls.Tessellation = *tessellation
	}
	if *vertex != "" {
		settings.Scene.Controls.VertexShader = *vertex
	}
	if *fragment != "" {
		settings.Scene.Controls.FragmentShader = *fragment
	}
	if *serve {
		settings.Server.Enabled = true
	}
	if *addr != "" {
		settings.Server.Addr = *addr
	}
	if err := settings.Validate(); err != nil {
		slog.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	fmt.Println("=== Icosphere Viewer ===")
	fmt.Printf("Window: %dx%d\n", settings.Window.Width, settings.Window.Height)
	fmt.Printf("Tessellation: %d\n", settings.Scene.Controls.Tessellation)
	fmt.Printf("Shaders: %s / %s\n", settings.Scene.Controls.VertexShader, settings.Scene.Controls.FragmentShader)

	if err := run(settings); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(settings config.Settings) error {
	window, err := opengl.NewWindow(settings.Window.Width, settings.Window.Height, settings.Window.Title, settings.Window.VSync)
	if err != nil {
		return err
	}
	defer window.Terminate()

	ctx := window.Context()
	slog.Info("OpenGL context ready", "version", ctx.Version(), "renderer", ctx.Renderer())

	registry := shaders.Default()
	panel := control.NewPanel(settings.Scene.Controls, registry)

	camera := rendering.NewCamera(settings.Camera.PositionVec(), settings.Camera.TargetVec())
	camera.FovY = mgl32.DegToRad(settings.Camera.FovDegrees)
	camera.Near = settings.Camera.Near
	camera.Far = settings.Camera.Far

	loop, err := scene.NewLoop(ctx, camera, registry, panel.Snapshot(), scene.Options{
		Radius:     settings.Scene.Radius,
		Effect:     settings.Scene.EffectVec(),
		ClearColor: settings.Scene.ClearColor,
		DrawExtras: settings.Scene.DrawExtras,
		Logger:     slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	defer loop.Close()

	loop.Resize(window.FramebufferSize())
	window.OnResize(loop.Resize)
	window.OnKey(func(key glfw.Key, mods glfw.ModifierKey) {
		handleKey(panel, key)
	})
	window.OnDrag(func(dx, dy float64) {
		camera.Orbit(float32(dx)*0.005, float32(dy)*0.005)
	})
	window.OnScroll(func(dy float64) {
		camera.Zoom(float32(1 - dy*0.1))
	})

	var server *control.Server
	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()
	if settings.Server.Enabled {
		server = control.NewServer(panel, slog.Default())
		interval := time.Duration(settings.Server.StatsIntervalMs) * time.Millisecond
		go func() {
			if err := server.Run(serverCtx, settings.Server.Addr, interval); err != nil {
				slog.Error("control server stopped", "error", err)
			}
		}()
	}

	printKeyBindings()

	lastReport := time.Now()
	var framesAtReport uint64
	for !window.ShouldClose() {
		window.PollEvents()

		snap := panel.Snapshot()
		if err := loop.Tick(snap); err != nil {
			var compileErr *gpu.CompileError
			var linkErr *gpu.LinkError
			switch {
			case errors.As(err, &compileErr):
				slog.Error("shader compile failed", "stage", compileErr.Stage, "variant", compileErr.Source, "log", compileErr.Log)
			case errors.As(err, &linkErr):
				slog.Error("shader link failed", "log", linkErr.Log)
			}
			return err
		}
		window.SwapBuffers()

		if elapsed := time.Since(lastReport); elapsed >= time.Second {
			frames := loop.Frames()
			mesh := loop.Icosphere()
			stats := control.Stats{
				FPS:            float64(frames-framesAtReport) / elapsed.Seconds(),
				Frame:          frames,
				Tessellation:   loop.Level(),
				Triangles:      mesh.TriangleCount(),
				Vertices:       mesh.VertexCount(),
				VertexShader:   snap.VertexShader,
				FragmentShader: snap.FragmentShader,
			}
			slog.Info(stats.String())
			if server != nil {
				server.Publish(stats)
			}
			lastReport = time.Now()
			framesAtReport = frames
		}
	}
	return nil
}

var levelKeys = map[glfw.Key]int{
	glfw.Key0: 0, glfw.Key1: 1, glfw.Key2: 2,
	glfw.Key3: 3, glfw.Key4: 4, glfw.Key5: 5,
	glfw.Key6: 6, glfw.Key7: 7, glfw.Key8: 8,
}

func handleKey(panel *control.Panel, key glfw.Key) {
	if level, ok := levelKeys[key]; ok {
		slog.Info("tessellation", "level", panel.SetTessellation(level))
		return
	}
	switch key {
	case glfw.KeyL:
		panel.LoadScene()
		slog.Info("load scene requested")
	case glfw.KeyV:
		slog.Info("vertex shader", "variant", panel.CycleShader(gpu.VertexStage))
	case glfw.KeyF:
		slog.Info("fragment shader", "variant", panel.CycleShader(gpu.FragmentStage))
	}
}

func printKeyBindings() {
	fmt.Println("\nControls:")
	fmt.Println("  0-8         - Icosphere tessellation level")
	fmt.Println("  L           - Load scene")
	fmt.Println("  V           - Cycle vertex shader")
	fmt.Println("  F           - Cycle fragment shader")
	fmt.Println("  Mouse drag  - Orbit camera")
	fmt.Println("  Scroll      - Zoom")
	fmt.Println("  ESC         - Exit")
}
