package display

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// RGBARShift is the bit shift for the red component in RGBA format
	RGBARShift = 24
	// RGBAGShift is the bit shift for the green component in RGBA format
	RGBAGShift = 16
	// RGBABShift is the bit shift for the blue component in RGBA format
	RGBABShift = 8
	// RGBAColorMask is the mask for extracting color components
	RGBAColorMask = 0xFF
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for screen pixels
	DefaultPixelScale = 20
	// DefaultWindowWidth is the default window width (screen width * scale)
	DefaultWindowWidth = 64 * DefaultPixelScale // 1280
	// DefaultWindowHeight is the default window height (screen height * scale)
	DefaultWindowHeight = 32 * DefaultPixelScale // 640
)

// FullAlpha is the alpha value for fully opaque pixels
const FullAlpha = 255

// RGBA splits a packed 0xRRGGBBAA colour into its components.
func RGBA(color uint32) (r, g, b, a uint8) {
	return uint8(color >> RGBARShift & RGBAColorMask),
		uint8(color >> RGBAGShift & RGBAColorMask),
		uint8(color >> RGBABShift & RGBAColorMask),
		uint8(color & RGBAColorMask)
}
