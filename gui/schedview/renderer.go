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

package schedview

import (
	"fmt"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

// renderer is a trimmed version of the teacher's gl32 renderer: one shader,
// one font texture, one VBO/EBO pair, no screenshot or video capture paths,
// since schedview only ever draws text panels.
type renderer struct {
	program       uint32
	projLoc       int32
	texLoc        int32
	posLoc        uint32
	uvLoc         uint32
	colorLoc      uint32
	vbo, ebo      uint32
	vao           uint32
	fontTextureID uint32
}

const vertexShaderSrc = `#version 150
uniform mat4 proj;
in vec2 position;
in vec2 uv;
in vec4 color;
out vec2 fragUV;
out vec4 fragColor;
void main() {
	fragUV = uv;
	fragColor = color;
	gl_Position = proj * vec4(position.xy, 0, 1);
}
` + "\x00"

const fragmentShaderSrc = `#version 150
uniform sampler2D tex;
in vec2 fragUV;
in vec4 fragColor;
out vec4 outColor;
void main() {
	outColor = fragColor * texture(tex, fragUV.st);
}
` + "\x00"

func newRenderer() (*renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}

	program, err := compileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, err
	}

	r := &renderer{
		program:  program,
		projLoc:  gl.GetUniformLocation(program, gl.Str("proj\x00")),
		texLoc:   gl.GetUniformLocation(program, gl.Str("tex\x00")),
		posLoc:   uint32(gl.GetAttribLocation(program, gl.Str("position\x00"))),
		uvLoc:    uint32(gl.GetAttribLocation(program, gl.Str("uv\x00"))),
		colorLoc: uint32(gl.GetAttribLocation(program, gl.Str("color\x00"))),
	}

	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)
	gl.GenVertexArrays(1, &r.vao)

	r.uploadFontAtlas()

	return r, nil
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		return 0, fmt.Errorf("link program: %s", string(log))
	}

	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		return 0, fmt.Errorf("compile shader: %s", string(log))
	}
	return shader, nil
}

func (r *renderer) uploadFontAtlas() {
	io := imgui.CurrentIO()
	image := io.Fonts().TextureDataAlpha8()

	gl.GenTextures(1, &r.fontTextureID)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTextureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(image.Width), int32(image.Height), 0, gl.RED, gl.UNSIGNED_BYTE, image.Pixels)

	io.Fonts().SetTextureID(imgui.TextureID(r.fontTextureID))
}

func (r *renderer) destroy() {
	gl.DeleteTextures(1, &r.fontTextureID)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.program)
}

// render translates one frame of ImGui draw data into OpenGL3 draw calls.
func (r *renderer) render(drawData imgui.DrawData) {
	displaySize := imgui.CurrentIO().DisplaySize()
	if displaySize.X <= 0 || displaySize.Y <= 0 {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)

	gl.Viewport(0, 0, int32(displaySize.X), int32(displaySize.Y))

	ortho := orthoProjection(displaySize.X, displaySize.Y)

	gl.UseProgram(r.program)
	gl.Uniform1i(r.texLoc, 0)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &ortho[0])

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	gl.EnableVertexAttribArray(r.posLoc)
	gl.EnableVertexAttribArray(r.uvLoc)
	gl.EnableVertexAttribArray(r.colorLoc)

	vertexSize, vertexOffsetPos, vertexOffsetUV, vertexOffsetCol := imgui.VertexBufferLayout()
	gl.VertexAttribPointerWithOffset(r.posLoc, 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetPos))
	gl.VertexAttribPointerWithOffset(r.uvLoc, 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetUV))
	gl.VertexAttribPointerWithOffset(r.colorLoc, 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(vertexOffsetCol))

	indexSize := imgui.IndexBufferLayout()
	indexType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		var indexBufferOffset uintptr

		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize, vertexBuffer, gl.STREAM_DRAW)

		indexBuffer, indexBufferSize := list.IndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize, indexBuffer, gl.STREAM_DRAW)

		for _, cmd := range list.Commands() {
			clipRect := cmd.ClipRect()
			gl.Scissor(int32(clipRect.X), int32(displaySize.Y-clipRect.W), int32(clipRect.Z-clipRect.X), int32(clipRect.W-clipRect.Y))
			gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, indexBufferOffset)
			indexBufferOffset += uintptr(cmd.ElementCount() * indexSize)
		}
	}

	gl.Disable(gl.SCISSOR_TEST)
}

// orthoProjection builds a standard top-left-origin orthographic matrix for
// Dear ImGui's screen-space vertex coordinates.
func orthoProjection(width, height float32) [16]float32 {
	return [16]float32{
		2 / width, 0, 0, 0,
		0, 2 / -height, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}
