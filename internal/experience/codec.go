package experience

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformedTransition is returned when a stored record cannot be decoded.
var ErrMalformedTransition = errors.New("malformed transition record")

// MarshalTransition encodes t as one line of protobuf JSON.
func MarshalTransition(t *Transition) ([]byte, error) {
	return protojson.Marshal(t.Struct())
}

// UnmarshalTransition decodes a line written by MarshalTransition.
func UnmarshalTransition(data []byte) (*Transition, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransition, err)
	}
	return TransitionFromStruct(&s)
}

// Struct converts t into a protobuf Struct.
func (t *Transition) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":               structpb.NewStringValue(t.ID),
		"episode_id":       structpb.NewStringValue(t.EpisodeID),
		"step":             structpb.NewNumberValue(float64(t.Step)),
		"rows":             structpb.NewNumberValue(float64(t.Rows)),
		"cols":             structpb.NewNumberValue(float64(t.Cols)),
		"observation":      codesValue(t.Observation),
		"action":           structpb.NewNumberValue(float64(t.Action)),
		"reward":           structpb.NewNumberValue(t.Reward),
		"next_observation": codesValue(t.NextObservation),
		"done":             structpb.NewBoolValue(t.Done),
		"truncated":        structpb.NewBoolValue(t.Truncated),
		"action_mask":      maskValue(t.ActionMask),
		"return_to_go":     structpb.NewNumberValue(t.ReturnToGo),
	}
	if !t.CollectedAt.IsZero() {
		fields["collected_at"] = structpb.NewStringValue(t.CollectedAt.Format(time.RFC3339Nano))
	}
	return &structpb.Struct{Fields: fields}
}

// TransitionFromStruct is the inverse of Transition.Struct.
func TransitionFromStruct(s *structpb.Struct) (*Transition, error) {
	f := s.GetFields()
	t := &Transition{
		ID:        f["id"].GetStringValue(),
		EpisodeID: f["episode_id"].GetStringValue(),
		Step:      int(f["step"].GetNumberValue()),
		Rows:      int(f["rows"].GetNumberValue()),
		Cols:      int(f["cols"].GetNumberValue()),
		Action:    int(f["action"].GetNumberValue()),
		Reward:    f["reward"].GetNumberValue(),
		Done:      f["done"].GetBoolValue(),
		Truncated: f["truncated"].GetBoolValue(),

		ReturnToGo: f["return_to_go"].GetNumberValue(),
	}
	if t.ID == "" || t.EpisodeID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedTransition)
	}

	var err error
	if t.Observation, err = codesFrom(f["observation"]); err != nil {
		return nil, err
	}
	if t.NextObservation, err = codesFrom(f["next_observation"]); err != nil {
		return nil, err
	}
	for _, v := range f["action_mask"].GetListValue().GetValues() {
		t.ActionMask = append(t.ActionMask, v.GetBoolValue())
	}
	if ts := f["collected_at"].GetStringValue(); ts != "" {
		if t.CollectedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("%w: collected_at: %v", ErrMalformedTransition, err)
		}
	}
	return t, nil
}

func codesValue(codes []uint8) *structpb.Value {
	values := make([]*structpb.Value, len(codes))
	for i, c := range codes {
		values[i] = structpb.NewNumberValue(float64(c))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func codesFrom(v *structpb.Value) ([]uint8, error) {
	values := v.GetListValue().GetValues()
	codes := make([]uint8, len(values))
	for i, x := range values {
		n := x.GetNumberValue()
		if n < 0 || n > 255 || n != float64(uint8(n)) {
			return nil, fmt.Errorf("%w: cell code %v", ErrMalformedTransition, n)
		}
		codes[i] = uint8(n)
	}
	return codes, nil
}

func maskValue(mask []bool) *structpb.Value {
	values := make([]*structpb.Value, len(mask))
	for i, ok := range mask {
		values[i] = structpb.NewBoolValue(ok)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}
