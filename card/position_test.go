package card

import "testing"

func TestPosition(t *testing.T) {
	tests := []struct {
		name      string
		container Rect
		item      Rect
		want      Point
	}{
		{
			name:      "left clamp",
			container: Rect{Left: 100, Top: 50, Width: 360},
			item:      Rect{Left: 150, Top: 80, Width: 40},
			want:      Point{X: 15, Y: 0},
		},
		{
			name:      "right clamp then left clamp",
			container: Rect{Left: 0, Top: 0, Width: 300},
			item:      Rect{Left: 560, Top: 100, Width: 40}, // raw x = 400
			want:      Point{X: 15, Y: 70},
		},
		{
			name:      "right clamp only",
			container: Rect{Left: 0, Top: 0, Width: 1000},
			item:      Rect{Left: 950, Top: 200, Width: 40}, // raw x = 790
			want:      Point{X: 655, Y: 170},
		},
		{
			name:      "inside bounds",
			container: Rect{Left: 30, Top: 0, Width: 1000},
			item:      Rect{Left: 530, Top: 400, Width: 100},
			want:      Point{X: 370, Y: 370},
		},
		{
			name:      "top clamp",
			container: Rect{Left: 0, Top: 50, Width: 1000},
			item:      Rect{Left: 500, Top: 10, Width: 100},
			want:      Point{X: 370, Y: -25},
		},
		{
			name:      "slightly above top is kept",
			container: Rect{Left: 0, Top: 50, Width: 1000},
			item:      Rect{Left: 500, Top: 60, Width: 100},
			want:      Point{X: 370, Y: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Position(tt.container, tt.item); got != tt.want {
				t.Fatalf("Position() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
