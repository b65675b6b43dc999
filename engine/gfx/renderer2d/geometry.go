package renderer2d

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hubastard/grove-vk/engine/colors"
)

// PushBlockSize is the byte size of the per-draw push constant block
// consumed by the immediate shaders.
const PushBlockSize = 96

// PushBlock is the wire layout shared with immediate.vert:
//
//	offset  0: vec4 pos[3]   (x, y, 0, 1) in NDC
//	offset 48: vec4 color[3] (r, g, b, a)
//
// Tightly packed little-endian float32, no padding.
type PushBlock [24]float32

// Pack builds the block for three NDC positions and their colors.
func Pack(pos [3]mgl32.Vec2, cols [3]colors.Color) PushBlock {
	var b PushBlock
	for i := 0; i < 3; i++ {
		b[i*4+0] = pos[i].X()
		b[i*4+1] = pos[i].Y()
		b[i*4+2] = 0
		b[i*4+3] = 1
		copy(b[12+i*4:12+i*4+4], cols[i][:])
	}
	return b
}

// Position returns vertex i as (x, y, z, w).
func (b PushBlock) Position(i int) mgl32.Vec4 {
	return mgl32.Vec4{b[i*4], b[i*4+1], b[i*4+2], b[i*4+3]}
}

// Color returns the color of vertex i.
func (b PushBlock) Color(i int) colors.Color {
	return colors.Color{b[12+i*4], b[12+i*4+1], b[12+i*4+2], b[12+i*4+3]}
}

// Bytes encodes the block in its wire layout.
func (b PushBlock) Bytes() [PushBlockSize]byte {
	var out [PushBlockSize]byte
	for i, f := range b {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// Unpack decodes a block from its wire layout. Missing trailing bytes
// read as zero.
func Unpack(data []byte) PushBlock {
	var b PushBlock
	for i := range b {
		if len(data) < (i+1)*4 {
			break
		}
		b[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return b
}

// Centroid is the arithmetic mean of the three points.
func Centroid(p [3]mgl32.Vec2) mgl32.Vec2 {
	return p[0].Add(p[1]).Add(p[2]).Mul(1.0 / 3.0)
}

// Rotation returns the 2x2 matrix [[cos, -sin], [sin, cos]].
func Rotation(theta float32) mgl32.Mat2 {
	s, c := math32.Sin(theta), math32.Cos(theta)
	// column-major
	return mgl32.Mat2{c, s, -s, c}
}

// Rotate turns p about pivot by theta radians. Points are treated as row
// vectors multiplied by Rotation(theta).
func Rotate(p [3]mgl32.Vec2, pivot mgl32.Vec2, theta float32) [3]mgl32.Vec2 {
	if theta == 0 {
		return p
	}
	rt := Rotation(theta).Transpose()
	var out [3]mgl32.Vec2
	for i, v := range p {
		out[i] = rt.Mul2x1(v.Sub(pivot)).Add(pivot)
	}
	return out
}

// Viewport is the pixel extent positions are normalized against.
type Viewport struct {
	Width, Height float32
}

// Norm maps a pixel position to normalized device coordinates. Pixel y
// grows downward, which already matches Vulkan's clip space.
func (v Viewport) Norm(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{2*p.X()/v.Width - 1, 2*p.Y()/v.Height - 1}
}
