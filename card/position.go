// Package card places the floating post detail card and tracks which post,
// if any, it shows.
package card

const (
	// Width is the rendered card width.
	Width = 360

	// centerOffset shifts the card so its center sits over the item center.
	centerOffset = -Width / 2

	// verticalOffset lifts the card slightly above the item.
	verticalOffset = -30

	// Margin is the gap kept between the card and the container's edges.
	Margin = 15

	// MinY is the highest the card may rise above the container top.
	MinY = -25
)

// Rect is an element's bounding box in window coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Point is a position relative to the container's top-left corner.
type Point struct {
	X float64
	Y float64
}

// Position returns where to draw the card for an item inside container.
// The right-edge clamp is applied first and the left-edge clamp last, so the
// left margin wins when the container is narrower than the card.
func Position(container, item Rect) Point {
	x := item.Left - container.Left + item.Width/2 + centerOffset
	y := item.Top - container.Top + verticalOffset

	if x+Width > container.Width+Margin {
		x = container.Width + Margin - Width
	}
	if x < Margin {
		x = Margin
	}
	if y < MinY {
		y = MinY
	}
	return Point{X: x, Y: y}
}
