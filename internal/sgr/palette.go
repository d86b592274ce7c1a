package sgr

import "fmt"

// RGB is a concrete 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// CSS returns the colour as a CSS rgb() value.
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the colour as #rrggbb, the form lipgloss accepts.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// standardPalette holds the 8 normal and 8 bright colours.
// Index 1 (red) is (187,0,0), matching what browsers historically
// showed for build output.
var standardPalette = [16]RGB{
	{0, 0, 0},       // black
	{187, 0, 0},     // red
	{0, 187, 0},     // green
	{187, 187, 0},   // yellow
	{0, 0, 187},     // blue
	{187, 0, 187},   // magenta
	{0, 187, 187},   // cyan
	{255, 255, 255}, // white
	{85, 85, 85},    // bright black
	{255, 85, 85},   // bright red
	{0, 255, 0},     // bright green
	{255, 255, 85},  // bright yellow
	{85, 85, 255},   // bright blue
	{255, 85, 255},  // bright magenta
	{85, 255, 255},  // bright cyan
	{255, 255, 255}, // bright white
}

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// Standard returns one of the 16 standard colours.
func Standard(index int) RGB {
	return standardPalette[index&0x0f]
}

// Indexed resolves an xterm 256-colour index.
func Indexed(index uint8) RGB {
	switch {
	case index < 16:
		return standardPalette[index]
	case index < 232:
		i := int(index) - 16
		return RGB{cubeLevels[i/36], cubeLevels[(i/6)%6], cubeLevels[i%6]}
	default:
		v := uint8(8 + 10*(int(index)-232))
		return RGB{v, v, v}
	}
}
