package remote

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// toValue converts a Go value into a protobuf Value. Values structpb cannot
// represent directly go through their JSON form.
func toValue(v any) (*structpb.Value, error) {
	if pv, err := structpb.NewValue(v); err == nil {
		return pv, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result %T: %w", v, err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encode result %T: %w", v, err)
	}
	return structpb.NewValue(generic)
}

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[name].GetStringValue()
}

func argsField(s *structpb.Struct) []any {
	list := s.GetFields()["args"].GetListValue()
	if list == nil {
		return nil
	}
	return list.AsSlice()
}
