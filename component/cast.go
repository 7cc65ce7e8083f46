package component

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/image/colornames"
)

var (
	// ErrKindMismatch is returned when a value is read back as a different payload kind.
	ErrKindMismatch = errors.New("component: kind mismatch")
	// ErrInvalidColor is returned by ParseColor for unrecognised input.
	ErrInvalidColor = errors.New("component: invalid color")
)

// As narrows v to the concrete payload type T.
func As[T Value](v Value) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var zero T
	return zero, errors.Wrapf(ErrKindMismatch, "cast %s to %s", KindOf(v), kindName(zero))
}

// Require fails unless v holds the given kind.
func Require(v Value, want Kind) error {
	if got := KindOf(v); got != want {
		return errors.Wrapf(ErrKindMismatch, "cast %s to %s", got, want)
	}
	return nil
}

func kindName(v any) string {
	if tv, ok := v.(Value); ok {
		return tv.Kind().String()
	}
	return "Value"
}

// ParseColor accepts #rrggbb, #rrggbbaa or an SVG colour name such as "crimson".
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(raw)]; ok {
		return Color(color.NRGBAModel.Convert(c).(color.NRGBA)), nil
	}

	hex := strings.TrimPrefix(raw, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}

	var channels [4]uint8
	channels[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return Color{}, errors.Wrapf(ErrInvalidColor, "%q", s)
		}
		channels[i] = v
	}
	return Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}
