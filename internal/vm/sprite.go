package vm

// Framebuffer is a row-major 64x32 grid of monochrome pixels.
type Framebuffer [ScreenWidth * ScreenHeight]bool

// At reports whether the pixel at (x, y) is lit.
func (f Framebuffer) At(x, y int) bool {
	return f[y*ScreenWidth+x]
}

// blit XOR-draws an up-to-8-pixel-wide sprite onto buf at (x, y) and reports
// whether any lit pixel was toggled off. Rows and columns wrap around the
// screen edges independently; coordinates are never rejected. Sprite bits are
// MSB-first, one byte per row.
func blit(sprite []uint8, x, y int, buf *Framebuffer) bool {
	collided := false

	for r := range sprite {
		row := (y + r) % ScreenHeight
		for c := 0; c < 8; c++ {
			col := (x + c) % ScreenWidth
			bit := sprite[r]&(0x80>>c) != 0

			i := row*ScreenWidth + col
			collided = collided || (buf[i] && bit)
			buf[i] = buf[i] != bit
		}
	}

	return collided
}
