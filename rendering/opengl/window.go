package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"icoviewer/gpu"
)

// Window owns the GLFW window and its OpenGL context, and forwards input
// events to the handlers registered on it.
type Window struct {
	window *glfw.Window
	ctx    *Context

	onResize func(width, height int)
	onKey    func(key glfw.Key, mods glfw.ModifierKey)
	onDrag   func(dx, dy float64)
	onScroll func(dy float64)

	// Mouse state for camera control
	mouseDown  bool
	lastMouseX float64
	lastMouseY float64
}

// NewWindow creates a window with an OpenGL 4.1 core context made current on
// the calling thread. Failures wrap gpu.ErrContextUnavailable.
func NewWindow(width, height int, title string, vsync bool) (*Window, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize GLFW: %v", gpu.ErrContextUnavailable, err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: failed to create window: %v", gpu.ErrContextUnavailable, err)
	}
	window.MakeContextCurrent()

	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	ctx, err := newContext()
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	w := &Window{window: window, ctx: ctx}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			window.SetShouldClose(true)
			return
		}
		if w.onKey != nil {
			w.onKey(key, mods)
		}
	})

	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		w.mouseDown = action == glfw.Press
		if w.mouseDown {
			w.lastMouseX, w.lastMouseY = window.GetCursorPos()
		}
	})

	window.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if !w.mouseDown {
			return
		}
		dx, dy := xpos-w.lastMouseX, ypos-w.lastMouseY
		w.lastMouseX, w.lastMouseY = xpos, ypos
		if w.onDrag != nil {
			w.onDrag(dx, dy)
		}
	})

	window.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(yoff)
		}
	})

	return w, nil
}

func (w *Window) Context() *Context { return w.ctx }

// FramebufferSize returns the drawable size in pixels, which differs from
// the window size on high-DPI displays.
func (w *Window) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *Window) OnResize(fn func(width, height int))               { w.onResize = fn }
func (w *Window) OnKey(fn func(key glfw.Key, mods glfw.ModifierKey)) { w.onKey = fn }
func (w *Window) OnDrag(fn func(dx, dy float64))                     { w.onDrag = fn }
func (w *Window) OnScroll(fn func(dy float64))                       { w.onScroll = fn }

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.window.SwapBuffers()
}

// Terminate releases the context objects, the window and GLFW.
func (w *Window) Terminate() {
	w.ctx.release()
	w.window.Destroy()
	glfw.Terminate()
}
