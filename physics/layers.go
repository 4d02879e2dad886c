package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// Layer is a collision category bit set.
type Layer uint

const (
	LayerSolid Layer = 1 << iota
	LayerOneWay
	LayerCharacter
)

var LayerAll = Layer(cp.ALL_CATEGORIES)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeOneWay
	collisionTypeCharacter
	collisionTypeCharacterOneWay
)

// Has reports whether every bit of other is set in l.
func (l Layer) Has(other Layer) bool {
	return l&other == other
}

func queryFilter(mask Layer) cp.ShapeFilter {
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: uint(mask)}
}

func staticFilter(layer Layer) cp.ShapeFilter {
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(layer), Mask: cp.ALL_CATEGORIES}
}

// LayerOf returns the category bits of shape.
func LayerOf(shape *cp.Shape) Layer {
	if shape == nil {
		return 0
	}
	return Layer(shape.Filter.Categories)
}

var layerNames = map[string]Layer{
	"solid":     LayerSolid,
	"one_way":   LayerOneWay,
	"character": LayerCharacter,
	"all":       LayerAll,
}

// ParseLayer returns the layer with the given name.
func ParseLayer(name string) (Layer, error) {
	l, ok := layerNames[name]
	if !ok {
		return 0, fmt.Errorf("physics: unknown layer %q", name)
	}
	return l, nil
}

// UnmarshalYAML accepts a layer name, a list of names or a raw bit mask.
func (l *Layer) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var bits uint
		if err := value.Decode(&bits); err == nil {
			*l = Layer(bits)
			return nil
		}
		parsed, err := ParseLayer(value.Value)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	case yaml.SequenceNode:
		var mask Layer
		for _, item := range value.Content {
			parsed, err := ParseLayer(item.Value)
			if err != nil {
				return err
			}
			mask |= parsed
		}
		*l = mask
		return nil
	}
	return fmt.Errorf("physics: cannot decode layer from yaml kind %d", value.Kind)
}
