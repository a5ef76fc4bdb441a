package display

// font8x8 is an 8x8 bitmap font for printable ASCII.
// Each glyph is 8 bytes, one per pixel row, top row first.
// Bit 0 is the leftmost pixel.
var font8x8 = [128][8]byte{
	0x20: {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	0x21: {0x18, 0x3C, 0x3C, 0x18, 0x18, 0x00, 0x18, 0x00},
	0x22: {0x36, 0x36, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	0x23: {0x36, 0x36, 0x7F, 0x36, 0x7F, 0x36, 0x36, 0x00},
	0x24: {0x0C, 0x3E, 0x03, 0x1E, 0x30, 0x1F, 0x0C, 0x00},
	0x25: {0x00, 0x63, 0x33, 0x18, 0x0C, 0x66, 0x63, 0x00},
	0x26: {0x1C, 0x36, 0x1C, 0x6E, 0x3B, 0x33, 0x6E, 0x00},
	0x27: {0x06, 0x06, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00},
	0x28: {0x18, 0x0C, 0x06, 0x06, 0x06, 0x0C, 0x18, 0x00},
	0x29: {0x06, 0x0C, 0x18, 0x18, 0x18, 0x0C, 0x06, 0x00},
	0x2A: {0x00, 0x66, 0x3C, 0xFF, 0x3C, 0x66, 0x00, 0x00},
	0x2B: {0x00, 0x0C, 0x0C, 0x3F, 0x0C, 0x0C, 0x00, 0x00},
	0x2C: {0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C, 0x06},
	0x2D: {0x00, 0x00, 0x00, 0x3F, 0x00, 0x00, 0x00, 0x00},
	0x2E: {0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C, 0x00},
	0x2F: {0x60, 0x30, 0x18, 0x0C, 0x06, 0x03, 0x01, 0x00},
	0x30: {0x3E, 0x63, 0x73, 0x7B, 0x6F, 0x67, 0x3E, 0x00},
	0x31: {0x0C, 0x0E, 0x0C, 0x0C, 0x0C, 0x0C, 0x3F, 0x00},
	0x32: {0x1E, 0x33, 0x30, 0x1C, 0x06, 0x33, 0x3F, 0x00},
	0x33: {0x1E, 0x33, 0x30, 0x1C, 0x30, 0x33, 0x1E, 0x00},
	0x34: {0x38, 0x3C, 0x36, 0x33, 0x7F, 0x30, 0x78, 0x00},
	0x35: {0x3F, 0x03, 0x1F, 0x30, 0x30, 0x33, 0x1E, 0x00},
	0x36: {0x1C, 0x06, 0x03, 0x1F, 0x33, 0x33, 0x1E, 0x00},
	0x37: {0x3F, 0x33, 0x30, 0x18, 0x0C, 0x0C, 0x0C, 0x00},
	0x38: {0x1E, 0x33, 0x33, 0x1E, 0x33, 0x33, 0x1E, 0x00},
	0x39: {0x1E, 0x33, 0x33, 0x3E, 0x30, 0x18, 0x0E, 0x00},
	0x3A: {0x00, 0x0C, 0x0C, 0x00, 0x00, 0x0C, 0x0C, 0x00},
	0x3B: {0x00, 0x0C, 0x0C, 0x00, 0x00, 0x0C, 0x0C, 0x06},
	0x3C: {0x18, 0x0C, 0x06, 0x03, 0x06, 0x0C, 0x18, 0x00},
	0x3D: {0x00, 0x00, 0x3F, 0x00, 0x00, 0x3F, 0x00, 0x00},
	0x3E: {0x06, 0x0C, 0x18, 0x30, 0x18, 0x0C, 0x06, 0x00},
	0x3F: {0x1E, 0x33, 0x30, 0x18, 0x0C, 0x00, 0x0C, 0x00},
	0x40: {0x3E, 0x63, 0x7B, 0x7B, 0x7B, 0x03, 0x1E, 0x00},
	0x41: {0x0C, 0x1E, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x00},
	0x42: {0x3F, 0x66, 0x66, 0x3E, 0x66, 0x66, 0x3F, 0x00},
	0x43: {0x3C, 0x66, 0x03, 0x03, 0x03, 0x66, 0x3C, 0x00},
	0x44: {0x1F, 0x36, 0x66, 0x66, 0x66, 0x36, 0x1F, 0x00},
	0x45: {0x7F, 0x46, 0x16, 0x1E, 0x16, 0x46, 0x7F, 0x00},
	0x46: {0x7F, 0x46, 0x16, 0x1E, 0x16, 0x06, 0x0F, 0x00},
	0x47: {0x3C, 0x66, 0x03, 0x03, 0x73, 0x66, 0x7C, 0x00},
	0x48: {0x33, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x33, 0x00},
	0x49: {0x1E, 0x0C, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00},
	0x4A: {0x78, 0x30, 0x30, 0x30, 0x33, 0x33, 0x1E, 0x00},
	0x4B: {0x67, 0x66, 0x36, 0x1E, 0x36, 0x66, 0x67, 0x00},
	0x4C: {0x0F, 0x06, 0x06, 0x06, 0x46, 0x66, 0x7F, 0x00},
	0x4D: {0x63, 0x77, 0x7F, 0x7F, 0x6B, 0x63, 0x63, 0x00},
	0x4E: {0x63, 0x67, 0x6F, 0x7B, 0x73, 0x63, 0x63, 0x00},
	0x4F: {0x1C, 0x36, 0x63, 0x63, 0x63, 0x36, 0x1C, 0x00},
	0x50: {0x3F, 0x66, 0x66, 0x3E, 0x06, 0x06, 0x0F, 0x00},
	0x51: {0x1E, 0x33, 0x33, 0x33, 0x3B, 0x1E, 0x38, 0x00},
	0x52: {0x3F, 0x66, 0x66, 0x3E, 0x36, 0x66, 0x67, 0x00},
	0x53: {0x1E, 0x33, 0x07, 0x0E, 0x38, 0x33, 0x1E, 0x00},
	0x54: {0x3F, 0x2D, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00},
	0x55: {0x33, 0x33, 0x33, 0x33, 0x33, 0x33, 0x3F, 0x00},
	0x56: {0x33, 0x33, 0x33, 0x33, 0x33, 0x1E, 0x0C, 0x00},
	0x57: {0x63, 0x63, 0x63, 0x6B, 0x7F, 0x77, 0x63, 0x00},
	0x58: {0x63, 0x63, 0x36, 0x1C, 0x1C, 0x36, 0x63, 0x00},
	0x59: {0x33, 0x33, 0x33, 0x1E, 0x0C, 0x0C, 0x1E, 0x00},
	0x5A: {0x7F, 0x63, 0x31, 0x18, 0x4C, 0x66, 0x7F, 0x00},
	0x5B: {0x1E, 0x06, 0x06, 0x06, 0x06, 0x06, 0x1E, 0x00},
	0x5C: {0x03, 0x06, 0x0C, 0x18, 0x30, 0x60, 0x40, 0x00},
	0x5D: {0x1E, 0x18, 0x18, 0x18, 0x18, 0x18, 0x1E, 0x00},
	0x5E: {0x08, 0x1C, 0x36, 0x63, 0x00, 0x00, 0x00, 0x00},
	0x5F: {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF},
	0x60: {0x0C, 0x0C, 0x18, 0x00, 0x00, 0x00, 0x00, 0x00},
	0x61: {0x00, 0x00, 0x1E, 0x30, 0x3E, 0x33, 0x6E, 0x00},
	0x62: {0x07, 0x06, 0x06, 0x3E, 0x66, 0x66, 0x3B, 0x00},
	0x63: {0x00, 0x00, 0x1E, 0x33, 0x03, 0x33, 0x1E, 0x00},
	0x64: {0x38, 0x30, 0x30, 0x3E, 0x33, 0x33, 0x6E, 0x00},
	0x65: {0x00, 0x00, 0x1E, 0x33, 0x3F, 0x03, 0x1E, 0x00},
	0x66: {0x1C, 0x36, 0x06, 0x0F, 0x06, 0x06, 0x0F, 0x00},
	0x67: {0x00, 0x00, 0x6E, 0x33, 0x33, 0x3E, 0x30, 0x1F},
	0x68: {0x07, 0x06, 0x36, 0x6E, 0x66, 0x66, 0x67, 0x00},
	0x69: {0x0C, 0x00, 0x0E, 0x0C, 0x0C, 0x0C, 0x1E, 0x00},
	0x6A: {0x30, 0x00, 0x30, 0x30, 0x30, 0x33, 0x33, 0x1E},
	0x6B: {0x07, 0x06, 0x66, 0x36, 0x1E, 0x36, 0x67, 0x00},
	0x6C: {0x0E, 0x0C, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00},
	0x6D: {0x00, 0x00, 0x33, 0x7F, 0x7F, 0x6B, 0x63, 0x00},
	0x6E: {0x00, 0x00, 0x1F, 0x33, 0x33, 0x33, 0x33, 0x00},
	0x6F: {0x00, 0x00, 0x1E, 0x33, 0x33, 0x33, 0x1E, 0x00},
	0x70: {0x00, 0x00, 0x3B, 0x66, 0x66, 0x3E, 0x06, 0x0F},
	0x71: {0x00, 0x00, 0x6E, 0x33, 0x33, 0x3E, 0x30, 0x78},
	0x72: {0x00, 0x00, 0x3B, 0x6E, 0x66, 0x06, 0x0F, 0x00},
	0x73: {0x00, 0x00, 0x3E, 0x03, 0x1E, 0x30, 0x1F, 0x00},
	0x74: {0x08, 0x0C, 0x3E, 0x0C, 0x0C, 0x2C, 0x18, 0x00},
	0x75: {0x00, 0x00, 0x33, 0x33, 0x33, 0x33, 0x6E, 0x00},
	0x76: {0x00, 0x00, 0x33, 0x33, 0x33, 0x1E, 0x0C, 0x00},
	0x77: {0x00, 0x00, 0x63, 0x6B, 0x7F, 0x7F, 0x36, 0x00},
	0x78: {0x00, 0x00, 0x63, 0x36, 0x1C, 0x36, 0x63, 0x00},
	0x79: {0x00, 0x00, 0x33, 0x33, 0x33, 0x3E, 0x30, 0x1F},
	0x7A: {0x00, 0x00, 0x3F, 0x19, 0x0C, 0x26, 0x3F, 0x00},
	0x7B: {0x38, 0x0C, 0x0C, 0x07, 0x0C, 0x0C, 0x38, 0x00},
	0x7C: {0x18, 0x18, 0x18, 0x00, 0x18, 0x18, 0x18, 0x00},
	0x7D: {0x07, 0x0C, 0x0C, 0x38, 0x0C, 0x0C, 0x07, 0x00},
	0x7E: {0x6E, 0x3B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
}

// glyph returns the bitmap for r. Anything outside printable ASCII is
// drawn as '?'.
func glyph(r rune) *[8]byte {
	if r < 0x20 || r > 0x7E {
		r = '?'
	}
	return &font8x8[r]
}
