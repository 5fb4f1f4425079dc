package systems

import "math"

// Mask is a packed bitmap of occupied pixels.
// Row y holds Width bits in ceil(Width/64) words, least significant bit first.
type Mask struct {
	Width, Height int
	stride        int
	bits          []uint64
}

// NewMask returns an empty mask of the given size.
func NewMask(w, h int) *Mask {
	stride := (w + 63) / 64
	return &Mask{
		Width:  w,
		Height: h,
		stride: stride,
		bits:   make([]uint64, stride*h),
	}
}

// RectMask returns a fully occupied w×h mask.
func RectMask(w, h int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// EllipseMask returns the ellipse inscribed in a w×h box.
// A pixel is occupied when its center lies inside the ellipse.
func EllipseMask(w, h int) *Mask {
	m := NewMask(w, h)
	rx := float64(w) / 2
	ry := float64(h) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - rx) / rx
			dy := (float64(y) + 0.5 - ry) / ry
			if dx*dx+dy*dy <= 1 {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Set marks pixel (x, y) occupied. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.bits[y*m.stride+x/64] |= 1 << uint(x%64)
}

// Get reports whether pixel (x, y) is occupied.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits[y*m.stride+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of occupied pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.bits {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

func (m *Mask) row(y int) []uint64 {
	return m.bits[y*m.stride : (y+1)*m.stride]
}

// bitsAt returns the 64 bits of row starting at bit index start.
// Bits outside the row read as zero.
func bitsAt(row []uint64, start int) uint64 {
	if start <= -64 {
		return 0
	}
	if start < 0 {
		if len(row) == 0 {
			return 0
		}
		return row[0] << uint(-start)
	}
	i := start / 64
	if i >= len(row) {
		return 0
	}
	off := uint(start % 64)
	v := row[i] >> off
	if off > 0 && i+1 < len(row) {
		v |= row[i+1] << (64 - off)
	}
	return v
}

// Overlap reports whether any occupied pixel of m coincides with an occupied
// pixel of other when other's origin is placed at (dx, dy) in m's coordinates.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	y0 := max(0, dy)
	y1 := min(m.Height, dy+other.Height)
	if y0 >= y1 || dx >= m.Width || dx+other.Width <= 0 {
		return false
	}

	for y := y0; y < y1; y++ {
		mrow := m.row(y)
		orow := other.row(y - dy)
		for wi, w := range mrow {
			if w == 0 {
				continue
			}
			if w&bitsAt(orow, wi*64-dx) != 0 {
				return true
			}
		}
	}
	return false
}

// Collides reports whether an agent body at (ax, ay) touches either barrier of o.
// Positions are rounded to whole pixels before the masks are compared.
func Collides(agent *Mask, ax, ay float64, o *Obstacle, barrier *Mask) bool {
	x := int(math.Round(ax))
	y := int(math.Round(ay))
	dx := int(math.Round(o.X)) - x

	if agent.Overlap(barrier, dx, int(math.Round(o.Top))-y) {
		return true
	}
	return agent.Overlap(barrier, dx, int(math.Round(o.Bottom))-y)
}
