package pipeline

import (
	"encoding/json"
	"fmt"
)

// Params is a model record kept in its library encoding. It lets records be
// resolved and re-emitted without knowing the model they belong to.
type Params json.RawMessage

func (p Params) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	if p == nil {
		return fmt.Errorf("pipeline.Params: UnmarshalJSON on nil pointer")
	}
	*p = append((*p)[:0], data...)
	return nil
}

// MarshalYAML emits the decoded value so YAML output stays structured
func (p Params) MarshalYAML() (any, error) {
	if len(p) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(p, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (p Params) String() string {
	if len(p) == 0 {
		return "null"
	}
	return string(p)
}
