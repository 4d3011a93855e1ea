package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format encodes data as YAML. Values are first normalized through their
// JSON form so json tags decide the key names.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	normalized, err := normalize(data)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalized); err != nil {
		return err
	}
	return enc.Close()
}

func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
