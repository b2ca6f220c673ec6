package rover

import "fmt"

// Position represents x,y coordinates on the terrain
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Terrain is the inclusive grid [0,MaxX]x[0,MaxY].
type Terrain struct {
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Contains reports whether p lies inside the terrain on all four sides.
func (t Terrain) Contains(p Position) bool {
	return p.X >= 0 && p.X <= t.MaxX && p.Y >= 0 && p.Y <= t.MaxY
}

// exceedsUpper reports whether p lies beyond MaxX or MaxY. Placement only
// checks the upper bounds.
func (t Terrain) exceedsUpper(p Position) bool {
	return p.X > t.MaxX || p.Y > t.MaxY
}

// Area returns the number of cells in the terrain.
func (t Terrain) Area() int {
	return (t.MaxX + 1) * (t.MaxY + 1)
}

func (t Terrain) String() string {
	return fmt.Sprintf("%d %d", t.MaxX, t.MaxY)
}
