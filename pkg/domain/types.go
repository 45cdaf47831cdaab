package domain

import "github.com/aretw0/shaperig/pkg/schema"

// Color aliases the wire color so graph entities and their records share
// one representation.
type Color = schema.Color

// DefaultColor is the neutral grey new entities start with.
var DefaultColor = schema.DefaultColor
