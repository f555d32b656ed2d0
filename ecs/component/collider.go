package component

// ColliderShape selects the collider geometry.
type ColliderShape uint8

const (
	ColliderBox ColliderShape = iota
	ColliderCircle
)

// Collider declares collision geometry relative to the entity transform.
type Collider struct {
	Shape ColliderShape `yaml:"shape"`
	// HalfWidth and HalfHeight are used by ColliderBox, before scale.
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
	// Radius is used by ColliderCircle, before scale.
	Radius float64 `yaml:"radius"`
	// OffsetX and OffsetY shift the shape center from the transform origin
	// in the entity's local (rotated, scaled) frame.
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	// Layer is the collision layer id. Out-of-range ids fall back to the default layer.
	Layer uint8 `yaml:"layer"`
	// Disabled keeps the component attached but excludes it from collision checks.
	Disabled bool `yaml:"disabled"`
}

var ColliderComponent = NewComponent[Collider]()
