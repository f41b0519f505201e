package envserver

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/spaces"
)

// Wire field names shared by the server and the client.
const (
	fieldEnvID           = "env_id"
	fieldEpisodeID       = "episode_id"
	fieldSeed            = "seed"
	fieldRows            = "rows"
	fieldCols            = "cols"
	fieldMaxEpisodeSteps = "max_episode_steps"
	fieldRewards         = "rewards"
	fieldRoomCount       = "room_count"
	fieldRoomTypes       = "room_types"
	fieldAction          = "action"
	fieldRequestID       = "request_id"
	fieldObservation     = "observation"
	fieldObsSpace        = "observation_space"
	fieldActionSpace     = "action_space"
	fieldReward          = "reward"
	fieldDone            = "done"
	fieldTruncated       = "truncated"
	fieldInfo            = "info"
	fieldPhase           = "phase"
	fieldSteps           = "steps"
	fieldReturn          = "return"
	fieldPosition        = "position"
	fieldLegalActions    = "legal_actions"
	fieldRender          = "render"
)

// CreateOptions are the per-environment overrides a client may send with
// CreateEnv. Zero values keep the server defaults.
type CreateOptions struct {
	Rows, Cols      int
	Seed            *int64
	MaxEpisodeSteps int
	Rewards         *game.RewardSchema
	RoomCount       *mapgen.IntParam
	RoomTypes       []core.RoomType
}

// Struct encodes the options as a CreateEnv request.
func (o CreateOptions) Struct() (*structpb.Struct, error) {
	m := map[string]interface{}{}
	if o.Rows > 0 {
		m[fieldRows] = o.Rows
	}
	if o.Cols > 0 {
		m[fieldCols] = o.Cols
	}
	if o.Seed != nil {
		m[fieldSeed] = *o.Seed
	}
	if o.MaxEpisodeSteps > 0 {
		m[fieldMaxEpisodeSteps] = o.MaxEpisodeSteps
	}
	if o.Rewards != nil {
		m[fieldRewards] = map[string]interface{}{
			"neutral":        o.Rewards.Neutral,
			"wall_collision": o.Rewards.WallCollision,
			"target_reached": o.Rewards.TargetReached,
		}
	}
	if o.RoomCount != nil {
		m[fieldRoomCount] = map[string]interface{}{"min": o.RoomCount.Min, "max": o.RoomCount.Max}
	}
	if len(o.RoomTypes) > 0 {
		types := make([]interface{}, len(o.RoomTypes))
		for i, t := range o.RoomTypes {
			types[i] = string(t)
		}
		m[fieldRoomTypes] = types
	}
	return structpb.NewStruct(m)
}

// parseCreateOptions decodes a CreateEnv request.
func parseCreateOptions(req *structpb.Struct) (CreateOptions, error) {
	f := fields(req)
	var o CreateOptions
	var err error

	if o.Rows, _, err = intField(f, fieldRows); err != nil {
		return o, err
	}
	if o.Cols, _, err = intField(f, fieldCols); err != nil {
		return o, err
	}
	if (o.Rows > 0) != (o.Cols > 0) {
		return o, fmt.Errorf("%w: rows and cols must be given together", ErrBadRequest)
	}
	seed, ok, err := int64Field(f, fieldSeed)
	if err != nil {
		return o, err
	}
	if ok {
		o.Seed = game.Seed(seed)
	}
	if o.MaxEpisodeSteps, _, err = intField(f, fieldMaxEpisodeSteps); err != nil {
		return o, err
	}

	if rewards, ok, err := structField(f, fieldRewards); err != nil {
		return o, err
	} else if ok {
		schema := game.DefaultRewardSchema()
		for key, dst := range map[string]*float64{
			"neutral":        &schema.Neutral,
			"wall_collision": &schema.WallCollision,
			"target_reached": &schema.TargetReached,
		} {
			if v, ok, err := floatField(rewards, key); err != nil {
				return o, err
			} else if ok {
				*dst = v
			}
		}
		o.Rewards = &schema
	}

	if v, ok := f[fieldRoomCount]; ok {
		p, err := intParamValue(fieldRoomCount, v)
		if err != nil {
			return o, err
		}
		o.RoomCount = &p
	}

	names, _, err := stringListField(f, fieldRoomTypes)
	if err != nil {
		return o, err
	}
	for _, name := range names {
		t, err := core.ParseRoomType(name)
		if err != nil {
			return o, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		o.RoomTypes = append(o.RoomTypes, t)
	}
	return o, nil
}

// apply overlays the options on the server defaults.
func (o CreateOptions) apply(base game.EnvConfig) game.EnvConfig {
	cfg := base
	if o.Rows > 0 && o.Cols > 0 {
		cfg.Maze = cfg.Maze.WithSize(o.Rows, o.Cols)
	}
	if o.RoomCount != nil {
		cfg.Maze.RoomCount = *o.RoomCount
	}
	if len(o.RoomTypes) > 0 {
		cfg.Maze.RoomTypes = o.RoomTypes
	}
	if o.Seed != nil {
		cfg.Seed = game.Seed(*o.Seed)
	}
	if o.MaxEpisodeSteps > 0 {
		cfg.MaxEpisodeSteps = o.MaxEpisodeSteps
	}
	if o.Rewards != nil {
		cfg.Rewards = *o.Rewards
	}
	return cfg
}

// EnvStatus is the GetEnv reply.
type EnvStatus struct {
	EnvID        string
	EpisodeID    string
	Seed         int64
	Phase        string
	Steps        int
	Return       float64
	Position     core.Coordinate
	LegalActions []bool
	Render       string
}

func (s EnvStatus) toStruct() (*structpb.Struct, error) {
	mask := make([]interface{}, len(s.LegalActions))
	for i, ok := range s.LegalActions {
		mask[i] = ok
	}
	return structpb.NewStruct(map[string]interface{}{
		fieldEnvID:        s.EnvID,
		fieldEpisodeID:    s.EpisodeID,
		fieldSeed:         s.Seed,
		fieldPhase:        s.Phase,
		fieldSteps:        s.Steps,
		fieldReturn:       s.Return,
		fieldPosition:     coordinateValue(s.Position),
		fieldLegalActions: mask,
		fieldRender:       s.Render,
	})
}

func parseEnvStatus(reply *structpb.Struct) (EnvStatus, error) {
	f := fields(reply)
	var s EnvStatus
	var err error
	if s.EnvID, _, err = stringField(f, fieldEnvID); err != nil {
		return s, err
	}
	if s.EpisodeID, _, err = stringField(f, fieldEpisodeID); err != nil {
		return s, err
	}
	if s.Seed, _, err = int64Field(f, fieldSeed); err != nil {
		return s, err
	}
	if s.Phase, _, err = stringField(f, fieldPhase); err != nil {
		return s, err
	}
	if s.Steps, _, err = intField(f, fieldSteps); err != nil {
		return s, err
	}
	if s.Return, _, err = floatField(f, fieldReturn); err != nil {
		return s, err
	}
	if s.Position, err = coordinateField(f, fieldPosition); err != nil {
		return s, err
	}
	if s.Render, _, err = stringField(f, fieldRender); err != nil {
		return s, err
	}
	for _, v := range f[fieldLegalActions].GetListValue().GetValues() {
		s.LegalActions = append(s.LegalActions, v.GetBoolValue())
	}
	return s, nil
}

// episodeReply describes a freshly started episode (CreateEnv and Reset).
func episodeReply(envID string, env *game.Env, obs *core.Grid) (*structpb.Struct, error) {
	box := env.ObservationSpace()
	return structpb.NewStruct(map[string]interface{}{
		fieldEnvID:       envID,
		fieldEpisodeID:   env.EpisodeID(),
		fieldSeed:        env.Seed(),
		fieldObservation: gridValue(obs),
		fieldObsSpace: map[string]interface{}{
			"low":   int(box.Low),
			"high":  int(box.High),
			"shape": []interface{}{box.Rows, box.Cols},
		},
		fieldActionSpace: map[string]interface{}{"n": env.ActionSpace().N},
	})
}

// episode is the client view of an episodeReply.
type episode struct {
	envID       string
	episodeID   string
	seed        int64
	observation *core.Grid
	obsSpace    spaces.Box
	actionSpace spaces.Discrete
}

func parseEpisodeReply(reply *structpb.Struct) (episode, error) {
	f := fields(reply)
	var ep episode
	var err error
	if ep.envID, _, err = stringField(f, fieldEnvID); err != nil {
		return ep, err
	}
	if ep.episodeID, _, err = stringField(f, fieldEpisodeID); err != nil {
		return ep, err
	}
	if ep.seed, _, err = int64Field(f, fieldSeed); err != nil {
		return ep, err
	}
	if ep.observation, err = gridField(f, fieldObservation); err != nil {
		return ep, err
	}

	box, _, err := structField(f, fieldObsSpace)
	if err != nil {
		return ep, err
	}
	low, _, err := intField(box, "low")
	if err != nil {
		return ep, err
	}
	high, _, err := intField(box, "high")
	if err != nil {
		return ep, err
	}
	ep.obsSpace = spaces.NewBox(uint8(low), uint8(high), ep.observation.Rows(), ep.observation.Cols())

	actions, _, err := structField(f, fieldActionSpace)
	if err != nil {
		return ep, err
	}
	n, _, err := intField(actions, "n")
	if err != nil {
		return ep, err
	}
	ep.actionSpace = spaces.NewDiscrete(n)
	return ep, nil
}

func stepReply(result game.StepResult) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		fieldObservation: gridValue(result.Observation),
		fieldReward:      result.Reward,
		fieldDone:        result.Done,
		fieldTruncated:   result.Truncated,
		fieldInfo:        result.Info.Map(),
	})
}

func parseStepReply(reply *structpb.Struct) (game.StepResult, error) {
	f := fields(reply)
	var r game.StepResult
	var err error
	if r.Observation, err = gridField(f, fieldObservation); err != nil {
		return r, err
	}
	if r.Reward, _, err = floatField(f, fieldReward); err != nil {
		return r, err
	}
	r.Done = f[fieldDone].GetBoolValue()
	r.Truncated = f[fieldTruncated].GetBoolValue()

	info, _, err := structField(f, fieldInfo)
	if err != nil {
		return r, err
	}
	outcome, _, err := stringField(info, "outcome")
	if err != nil {
		return r, err
	}
	var ok bool
	if r.Info.Outcome, ok = game.ParseOutcome(outcome); !ok {
		return r, fmt.Errorf("%w: unknown outcome %q", ErrBadRequest, outcome)
	}
	if r.Info.Message, _, err = stringField(info, "message"); err != nil {
		return r, err
	}
	if r.Info.Steps, _, err = intField(info, "steps"); err != nil {
		return r, err
	}
	if r.Info.Position, err = coordinateField(info, "position"); err != nil {
		return r, err
	}
	return r, nil
}

// gridValue encodes a grid as a list of rows.
func gridValue(g *core.Grid) []interface{} {
	rows := make([]interface{}, 0, g.Rows())
	for _, row := range g.Matrix() {
		cells := make([]interface{}, len(row))
		for c, code := range row {
			cells[c] = int(code)
		}
		rows = append(rows, cells)
	}
	return rows
}

func gridField(f map[string]*structpb.Value, key string) (*core.Grid, error) {
	rows := f[key].GetListValue().GetValues()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is missing or empty", ErrBadRequest, key)
	}
	cols := len(rows[0].GetListValue().GetValues())
	flat := make([]uint8, 0, len(rows)*cols)
	for r, row := range rows {
		cells := row.GetListValue().GetValues()
		if len(cells) != cols {
			return nil, fmt.Errorf("%w: %s row %d has %d cells, want %d", ErrBadRequest, key, r, len(cells), cols)
		}
		for _, cell := range cells {
			n := cell.GetNumberValue()
			if n < 0 || n > math.MaxUint8 || n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: %s holds invalid cell %v", ErrBadRequest, key, n)
			}
			flat = append(flat, uint8(n))
		}
	}
	g, err := core.GridFromFlat(len(rows), cols, flat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return g, nil
}

func coordinateValue(c core.Coordinate) []interface{} {
	return []interface{}{c.Row, c.Col}
}

func coordinateField(f map[string]*structpb.Value, key string) (core.Coordinate, error) {
	values := f[key].GetListValue().GetValues()
	if len(values) != 2 {
		return core.Coordinate{}, fmt.Errorf("%w: %s must be a [row, col] pair", ErrBadRequest, key)
	}
	return core.NewCoordinate(int(values[0].GetNumberValue()), int(values[1].GetNumberValue())), nil
}

// Field accessors. The bool result reports presence; a present field of the
// wrong kind is an ErrBadRequest.

func fields(s *structpb.Struct) map[string]*structpb.Value {
	if s == nil {
		return nil
	}
	return s.GetFields()
}

func present(v *structpb.Value) bool {
	if v == nil {
		return false
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return !null
}

func floatField(f map[string]*structpb.Value, key string) (float64, bool, error) {
	v, ok := f[key]
	if !ok || !present(v) {
		return 0, false, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, true, fmt.Errorf("%w: %s must be a number", ErrBadRequest, key)
	}
	return n.NumberValue, true, nil
}

func int64Field(f map[string]*structpb.Value, key string) (int64, bool, error) {
	n, ok, err := floatField(f, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %v", ErrBadRequest, key, n)
	}
	return int64(n), true, nil
}

func intField(f map[string]*structpb.Value, key string) (int, bool, error) {
	n, ok, err := int64Field(f, key)
	return int(n), ok, err
}

func stringField(f map[string]*structpb.Value, key string) (string, bool, error) {
	v, ok := f[key]
	if !ok || !present(v) {
		return "", false, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", true, fmt.Errorf("%w: %s must be a string", ErrBadRequest, key)
	}
	return s.StringValue, true, nil
}

func structField(f map[string]*structpb.Value, key string) (map[string]*structpb.Value, bool, error) {
	v, ok := f[key]
	if !ok || !present(v) {
		return nil, false, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, true, fmt.Errorf("%w: %s must be an object", ErrBadRequest, key)
	}
	return s.StructValue.GetFields(), true, nil
}

func stringListField(f map[string]*structpb.Value, key string) ([]string, bool, error) {
	v, ok := f[key]
	if !ok || !present(v) {
		return nil, false, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, true, fmt.Errorf("%w: %s must be a list", ErrBadRequest, key)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, true, fmt.Errorf("%w: %s must hold strings", ErrBadRequest, key)
		}
		out = append(out, s.StringValue)
	}
	return out, true, nil
}

// intParamValue accepts either a number (fixed value) or {min, max}.
func intParamValue(key string, v *structpb.Value) (mapgen.IntParam, error) {
	f := map[string]*structpb.Value{key: v}
	if n, ok, err := intField(f, key); err == nil && ok {
		return mapgen.FixedInt(n), nil
	}
	r, ok, err := structField(f, key)
	if err != nil || !ok {
		return mapgen.IntParam{}, fmt.Errorf("%w: %s must be a number or {min, max}", ErrBadRequest, key)
	}
	lo, okLo, err := intField(r, "min")
	if err != nil {
		return mapgen.IntParam{}, err
	}
	hi, okHi, err := intField(r, "max")
	if err != nil {
		return mapgen.IntParam{}, err
	}
	if !okLo || !okHi {
		return mapgen.IntParam{}, fmt.Errorf("%w: %s needs both min and max", ErrBadRequest, key)
	}
	return mapgen.IntRange(lo, hi), nil
}
