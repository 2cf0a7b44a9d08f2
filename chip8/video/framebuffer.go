package video

// Color is a packed 0xRRGGBBAA value used by presenters.
type Color uint32

const (
	// OnColor is the colour of a set pixel.
	OnColor Color = 0x00FF00FF
	// OffColor is the colour of an unset pixel.
	OffColor Color = 0x000000FF
)

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
)

// FrameBuffer is the monochrome display memory. Each cell holds 0 or 1.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []byte
}

// NewFrameBuffer creates a cleared frame buffer with the machine's dimensions.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]byte, FramebufferWidth*FramebufferHeight),
	}
}

func (fb *FrameBuffer) Width() uint  { return fb.width }
func (fb *FrameBuffer) Height() uint { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y uint) byte {
	return fb.buffer[y*fb.width+x]
}

// IsSet reports whether the pixel at x,y is lit.
func (fb *FrameBuffer) IsSet(x, y uint) bool {
	return fb.GetPixel(x, y) != 0
}

// Color returns the presenter colour for the pixel at x,y.
func (fb *FrameBuffer) Color(x, y uint) Color {
	if fb.IsSet(x, y) {
		return OnColor
	}
	return OffColor
}

// XorPixel flips the pixel at x,y when on is true. Coordinates wrap around the
// screen edges. Returns true when a lit pixel was turned off.
func (fb *FrameBuffer) XorPixel(x, y uint, on bool) (collision bool) {
	if !on {
		return false
	}

	idx := (y%fb.height)*fb.width + x%fb.width
	collision = fb.buffer[idx] == 1
	fb.buffer[idx] ^= 1
	return collision
}

// Clear turns off every pixel.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0
	}
}

// ToSlice returns the underlying row-major pixel data. Callers must treat it as read-only.
func (fb *FrameBuffer) ToSlice() []byte {
	return fb.buffer
}

// Clone returns an independent copy of the frame buffer.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	buf := make([]byte, len(fb.buffer))
	copy(buf, fb.buffer)
	return &FrameBuffer{width: fb.width, height: fb.height, buffer: buf}
}

// Equal reports whether both frame buffers hold the same pixels.
func (fb *FrameBuffer) Equal(other *FrameBuffer) bool {
	if other == nil || fb.width != other.width || fb.height != other.height {
		return false
	}
	for i := range fb.buffer {
		if fb.buffer[i] != other.buffer[i] {
			return false
		}
	}
	return true
}

// LitPixels counts the pixels currently turned on.
func (fb *FrameBuffer) LitPixels() int {
	count := 0
	for _, p := range fb.buffer {
		count += int(p)
	}
	return count
}
