package envserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/spaces"
)

const defaultCallTimeout = 10 * time.Second

var _ game.Environment = (*RemoteEnv)(nil)

// RemoteEnv is an environment hosted by an env server. It satisfies
// game.Environment, so agents drive it like a local Env. Step requests carry
// a fresh request ID so transport retries cannot step twice.
type RemoteEnv struct {
	client  *EnvServiceClient
	timeout time.Duration

	id          string
	episodeID   string
	seed        int64
	obsSpace    spaces.Box
	actionSpace spaces.Discrete
}

// CreateRemoteEnv creates an environment on the server behind conn and
// returns it with its first observation.
func CreateRemoteEnv(ctx context.Context, conn grpc.ClientConnInterface, opts CreateOptions) (*RemoteEnv, *core.Grid, error) {
	req, err := opts.Struct()
	if err != nil {
		return nil, nil, err
	}

	client := NewEnvServiceClient(conn)
	reply, err := client.CreateEnv(ctx, req)
	if err != nil {
		return nil, nil, fromStatus(err)
	}
	ep, err := parseEpisodeReply(reply)
	if err != nil {
		return nil, nil, err
	}

	r := &RemoteEnv{client: client, timeout: defaultCallTimeout, id: ep.envID}
	r.setEpisode(ep)
	return r, ep.observation, nil
}

func (r *RemoteEnv) setEpisode(ep episode) {
	r.episodeID = ep.episodeID
	r.seed = ep.seed
	r.obsSpace = ep.obsSpace
	r.actionSpace = ep.actionSpace
}

// SetTimeout bounds every call made through Step and Reset.
func (r *RemoteEnv) SetTimeout(d time.Duration) { r.timeout = d }

func (r *RemoteEnv) ID() string        { return r.id }
func (r *RemoteEnv) EpisodeID() string { return r.episodeID }
func (r *RemoteEnv) Seed() int64       { return r.seed }

func (r *RemoteEnv) ObservationSpace() spaces.Box { return r.obsSpace }
func (r *RemoteEnv) ActionSpace() spaces.Discrete { return r.actionSpace }

func (r *RemoteEnv) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RemoteEnv) Step(action core.Action) (game.StepResult, error) {
	if !action.IsValid() {
		return game.StepResult{}, core.WrapActionError(action, core.ErrInvalidAction)
	}

	req, err := structpb.NewStruct(map[string]interface{}{
		fieldEnvID:     r.id,
		fieldAction:    int(action),
		fieldRequestID: uuid.New().String(),
	})
	if err != nil {
		return game.StepResult{}, err
	}

	ctx, cancel := r.callContext()
	defer cancel()
	reply, err := r.client.Step(ctx, req)
	if err != nil {
		return game.StepResult{}, core.WrapActionError(action, fromStatus(err))
	}
	return parseStepReply(reply)
}

func (r *RemoteEnv) Reset(seed *int64) (*core.Grid, error) {
	m := map[string]interface{}{fieldEnvID: r.id}
	if seed != nil {
		m[fieldSeed] = *seed
	}
	req, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.callContext()
	defer cancel()
	reply, err := r.client.Reset(ctx, req)
	if err != nil {
		return nil, fromStatus(err)
	}
	ep, err := parseEpisodeReply(reply)
	if err != nil {
		return nil, err
	}
	r.setEpisode(ep)
	return ep.observation, nil
}

// Status fetches the server-side view of the environment.
func (r *RemoteEnv) Status(ctx context.Context) (EnvStatus, error) {
	req, err := structpb.NewStruct(map[string]interface{}{fieldEnvID: r.id})
	if err != nil {
		return EnvStatus{}, err
	}
	reply, err := r.client.GetEnv(ctx, req)
	if err != nil {
		return EnvStatus{}, fromStatus(err)
	}
	return parseEnvStatus(reply)
}

// Close releases the environment on the server.
func (r *RemoteEnv) Close(ctx context.Context) error {
	req, err := structpb.NewStruct(map[string]interface{}{fieldEnvID: r.id})
	if err != nil {
		return err
	}
	if _, err := r.client.CloseEnv(ctx, req); err != nil {
		return fromStatus(err)
	}
	return nil
}
