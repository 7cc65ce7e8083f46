// Package prefab builds entities from YAML templates.
//
// A template names its components in order, each as a one-key object whose key
// selects the payload kind:
//
//	name: crate
//	components:
//	  location: {point: [12, 4]}
//	  size: {f32: 1.5}
//	  tint: {color: crimson}
//	  solid: {bool: true}
package prefab

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/component"
)

var (
	// ErrUnsupportedKind is returned for kinds a template cannot express, such as opaque payloads.
	ErrUnsupportedKind = errors.New("prefab: unsupported component kind")
	// ErrMalformedTemplate is returned when a document does not have the expected shape.
	ErrMalformedTemplate = errors.New("prefab: malformed template")
)

// Template is a named, ordered list of component values.
type Template struct {
	Name       string
	Components []bbecs.ComponentValue
}

type document struct {
	Name       string    `yaml:"name"`
	Components yaml.Node `yaml:"components"`
}

// Parse decodes one YAML template.
func Parse(data []byte) (*Template, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrMalformedTemplate, err.Error())
	}
	if doc.Name == "" {
		return nil, errors.Wrap(ErrMalformedTemplate, "missing name")
	}

	t := &Template{Name: doc.Name}
	node := &doc.Components
	if node.Kind == 0 {
		return t, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrMalformedTemplate, "%s: line %d: components must be a mapping", doc.Name, node.Line)
	}

	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if _, dup := seen[key.Value]; dup {
			return nil, errors.Wrapf(ErrMalformedTemplate, "%s: line %d: duplicate component %q", doc.Name, key.Line, key.Value)
		}
		seen[key.Value] = struct{}{}

		value, err := decodeComponent(val)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: component %q", doc.Name, key.Value)
		}
		t.Components = append(t.Components, bbecs.ComponentValue{Name: key.Value, Value: value})
	}
	return t, nil
}

// LoadFile reads and parses the template at path.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "prefab: load %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "prefab: parse %s", path)
	}
	return t, nil
}

func decodeComponent(node *yaml.Node) (component.Value, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, errors.Wrapf(ErrMalformedTemplate, "line %d: want a single {kind: value} pair", node.Line)
	}
	kind, raw := node.Content[0].Value, node.Content[1]

	var (
		value component.Value
		err   error
	)
	switch kind {
	case "point":
		var xy []float64
		if err = raw.Decode(&xy); err == nil && len(xy) != 2 {
			err = errors.Newf("point needs [x, y], got %d values", len(xy))
		}
		if err == nil {
			value = component.NewPoint(xy[0], xy[1])
		}
	case "f32":
		var v float32
		err = raw.Decode(&v)
		value = component.F32(v)
	case "color":
		var s string
		if err = raw.Decode(&s); err == nil {
			c, perr := component.ParseColor(s)
			if perr != nil {
				return nil, errors.Wrapf(perr, "line %d", raw.Line)
			}
			value = c
		}
	case "u32":
		var v uint32
		err = raw.Decode(&v)
		value = component.U32(v)
	case "u64":
		var v uint64
		err = raw.Decode(&v)
		value = component.U64(v)
	case "usize":
		var v uint
		err = raw.Decode(&v)
		value = component.Usize(v)
	case "bool":
		var v bool
		err = raw.Decode(&v)
		value = component.Bool(v)
	case "keycode":
		var v uint16
		err = raw.Decode(&v)
		value = component.KeyCode(v)
	case "marker":
		var v string
		err = raw.Decode(&v)
		value = component.Marker(v)
	default:
		return nil, errors.Wrapf(ErrUnsupportedKind, "line %d: %q", node.Line, kind)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedTemplate, "line %d: %s: %v", raw.Line, kind, err)
	}
	return value, nil
}

// Spawn creates one entity from the template. Every component name is checked
// before the entity is spawned, so a failure leaves the world untouched.
func (t *Template) Spawn(w *bbecs.World) (bbecs.EntityID, error) {
	var id bbecs.EntityID
	if err := t.Command(&id).Apply(w); err != nil {
		return 0, errors.Wrapf(err, "prefab %q", t.Name)
	}
	return id, nil
}

// Command returns a deferred spawn of the template. target, if non-nil,
// receives the id when the command is applied.
func (t *Template) Command(target *bbecs.EntityID) bbecs.Command {
	components := make([]bbecs.ComponentValue, len(t.Components))
	copy(components, t.Components)
	return bbecs.NewSpawnCommand(target, components...)
}
