package server

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
)

// toStruct converts any JSON-encodable value into a Struct via its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into v through JSON.
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
