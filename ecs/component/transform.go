package component

// Transform is the world placement of an entity. A zero scale component is
// treated as 1 by consumers that need a scale.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()

// Velocity moves an entity each tick in the demo simulations.
type Velocity struct {
	X    float64
	Y    float64
	Spin float64
}

var VelocityComponent = NewComponent[Velocity]()
