// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

// Package schedview is a minimal SDL2 + Dear ImGui viewer over a running
// Scheduler, mirroring the structure of the teacher's gui/sdlimgui debugger
// (platform setup in its own file, rendering in its own file) at a fraction
// of the size: one window, one panel, no shaders beyond the single one
// Dear ImGui itself needs.
//
// It consumes only Scheduler.Snapshot, never the scheduler's internals,
// keeping it a thin, core-interface-only collaborator.
package schedview

import (
	"fmt"
	"runtime"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// Viewer owns the SDL window, the ImGui context and the OpenGL renderer for
// one schedview session.
type Viewer struct {
	sched *scheduler.Scheduler

	window *sdl.Window
	ctx    sdl.GLContext
	imgui  *imgui.Context
	rnd    *renderer

	lastFired []string
}

// New creates a window titled title and initialises SDL, an OpenGL 3.2 core
// context and Dear ImGui. Must be called on the main OS thread.
func New(sched *scheduler.Scheduler, title string, width, height int32) (*Viewer, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("schedview: sdl init: %w", err)
	}

	for attr, val := range map[sdl.GLattr]int{
		sdl.GL_CONTEXT_MAJOR_VERSION: 3,
		sdl.GL_CONTEXT_MINOR_VERSION: 2,
		sdl.GL_CONTEXT_PROFILE_MASK:  int(sdl.GL_CONTEXT_PROFILE_CORE),
	} {
		if err := sdl.GLSetAttribute(attr, val); err != nil {
			return nil, fmt.Errorf("schedview: sdl attribute: %w", err)
		}
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height, sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("schedview: create window: %w", err)
	}

	glctx, err := window.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("schedview: create GL context: %w", err)
	}

	imguiCtx := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetDisplaySize(imgui.Vec2{X: float32(width), Y: float32(height)})

	rnd, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("schedview: renderer: %w", err)
	}

	return &Viewer{
		sched:  sched,
		window: window,
		ctx:    glctx,
		imgui:  imguiCtx,
		rnd:    rnd,
	}, nil
}

// Close tears down the renderer, ImGui context and SDL window.
func (v *Viewer) Close() {
	v.rnd.destroy()
	v.imgui.Destroy()
	sdl.GLDeleteContext(v.ctx)
	v.window.Destroy()
	sdl.Quit()
}

// PollEvents drains pending SDL events, reporting whether the window should
// stay open.
func (v *Viewer) PollEvents() bool {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return true
		}
		if _, ok := ev.(*sdl.QuitEvent); ok {
			return false
		}
	}
}

// RecordFiring appends label to the scrolling list of recently fired
// triggers shown in the panel, capping it at 20 entries.
func (v *Viewer) RecordFiring(label string) {
	v.lastFired = append(v.lastFired, label)
	if len(v.lastFired) > 20 {
		v.lastFired = v.lastFired[len(v.lastFired)-20:]
	}
}

// RenderFrame draws one panel listing the current tick's phase bucket
// depths and the most recently fired triggers, and swaps the window.
func (v *Viewer) RenderFrame() {
	imgui.NewFrame()

	snap := v.sched.Snapshot()
	imgui.Begin("scheduler")
	imgui.Text(fmt.Sprintf("tick: %d", snap.CurrentTick))
	imgui.Text(fmt.Sprintf("state: %v", snap.State))
	imgui.Text(fmt.Sprintf("continuing: %d", snap.ContinuingCount))
	imgui.Separator()
	imgui.Text("phase buckets")
	for ph, n := range snap.PendingByPhase {
		imgui.Text(fmt.Sprintf("  %s: %d", ph, n))
	}
	imgui.Separator()
	imgui.Text("recently fired")
	for _, label := range v.lastFired {
		imgui.Text(fmt.Sprintf("  %s", label))
	}
	imgui.End()

	imgui.Render()
	v.rnd.render(imgui.RenderedDrawData())
	v.window.GLSwap()
}
