package render

// Each terminal cell shows two vertically stacked pixels.
const (
	FullBlock  = '█'
	UpperHalf  = '▀'
	LowerHalf  = '▄'
	EmptyBlock = ' '
)

// GetHalfBlockChar returns the cell character for a pair of pixels, drawn in the
// foreground colour over an unlit background.
func GetHalfBlockChar(top, bottom bool) rune {
	switch {
	case top && bottom:
		return FullBlock
	case top:
		return UpperHalf
	case bottom:
		return LowerHalf
	default:
		return EmptyBlock
	}
}
