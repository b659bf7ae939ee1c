package types

import "fmt"

// Parameter identifies one tracked chemical/physical quantity.
type Parameter int

const (
	Nitrat Parameter = iota
	Nitrit
	Phosphat
	PH
	Sauerstoff
	Carbonhearte
	Ammonium

	// ParameterCount is the number of tracked parameters.
	ParameterCount = int(iota)
)

var parameterKeys = [ParameterCount]string{
	Nitrat:       "nitrat",
	Nitrit:       "nitrit",
	Phosphat:     "phosphat",
	PH:           "ph",
	Sauerstoff:   "sauerstoff",
	Carbonhearte: "carbonhearte",
	Ammonium:     "ammonium",
}

// Parameters returns every tracked parameter in display order.
func Parameters() []Parameter {
	out := make([]Parameter, ParameterCount)
	for i := range out {
		out[i] = Parameter(i)
	}
	return out
}

// Key returns the dataset key, e.g. "nitrat".
func (p Parameter) Key() string {
	if !p.Valid() {
		return fmt.Sprintf("parameter(%d)", int(p))
	}
	return parameterKeys[p]
}

func (p Parameter) String() string { return p.Key() }

func (p Parameter) Valid() bool {
	return p >= 0 && int(p) < ParameterCount
}

// ParseParameter resolves a dataset key to its Parameter.
func ParseParameter(key string) (Parameter, error) {
	for i, k := range parameterKeys {
		if k == key {
			return Parameter(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", key)
}

func (p Parameter) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid parameter %d", int(p))
	}
	return []byte(p.Key()), nil
}

func (p *Parameter) UnmarshalText(text []byte) error {
	parsed, err := ParseParameter(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
