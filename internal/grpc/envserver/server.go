package envserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
)

var _ EnvServiceServer = (*Server)(nil)

// Server implements the environment service on top of an EnvManager.
type Server struct {
	manager *EnvManager
	logger  zerolog.Logger
}

func NewServer(manager *EnvManager, logger zerolog.Logger) *Server {
	return &Server{
		manager: manager,
		logger:  logger.With().Str("component", "env_server").Logger(),
	}
}

func (s *Server) Manager() *EnvManager { return s.manager }

// CreateEnv creates an environment and returns its first episode.
func (s *Server) CreateEnv(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	opts, err := parseCreateOptions(req)
	if err != nil {
		return nil, toStatus(err)
	}

	inst, err := s.manager.Create(ctx, opts)
	if err != nil {
		return nil, toStatus(err)
	}

	var reply *structpb.Struct
	err = inst.Do(func(env *game.Env) error {
		reply, err = episodeReply(inst.ID(), env, env.Observation())
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply, nil
}

// Reset starts a new episode. An explicit seed wins; otherwise the previous
// seed is incremented.
func (s *Server) Reset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	inst, err := s.lookup(req)
	if err != nil {
		return nil, err
	}

	var seed *int64
	if v, ok, err := int64Field(fields(req), fieldSeed); err != nil {
		return nil, toStatus(err)
	} else if ok {
		seed = game.Seed(v)
	}

	var reply *structpb.Struct
	err = inst.Do(func(env *game.Env) error {
		obs, err := env.Reset(seed)
		if err != nil {
			return err
		}
		reply, err = episodeReply(inst.ID(), env, obs)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply, nil
}

// Step applies one action. A repeated request_id returns the stored reply
// without stepping again.
func (s *Server) Step(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	inst, err := s.lookup(req)
	if err != nil {
		return nil, err
	}

	f := fields(req)
	action, ok, err := intField(f, fieldAction)
	if err != nil {
		return nil, toStatus(err)
	}
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s is required", fieldAction)
	}
	requestID, _, err := stringField(f, fieldRequestID)
	if err != nil {
		return nil, toStatus(err)
	}

	var reply *structpb.Struct
	err = inst.Do(func(env *game.Env) error {
		if cached := inst.replies.Check(requestID); cached != nil {
			s.logger.Debug().
				Str("env_id", inst.ID()).
				Str("request_id", requestID).
				Msg("Returning cached reply for repeated step")
			reply = cached
			return nil
		}

		result, err := env.Step(core.Action(action))
		if err != nil {
			return err
		}
		if reply, err = stepReply(result); err != nil {
			return err
		}
		inst.replies.Store(requestID, reply)
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply, nil
}

func (s *Server) CloseEnv(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := envID(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.manager.Close(id); err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{fieldEnvID: id})
}

func (s *Server) GetEnv(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	inst, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	reply, err := inst.Status().toStruct()
	if err != nil {
		return nil, toStatus(err)
	}
	return reply, nil
}

func (s *Server) lookup(req *structpb.Struct) (*EnvInstance, error) {
	id, err := envID(req)
	if err != nil {
		return nil, toStatus(err)
	}
	inst, err := s.manager.Get(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return inst, nil
}

func envID(req *structpb.Struct) (string, error) {
	id, _, err := stringField(fields(req), fieldEnvID)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", ErrBadRequest, fieldEnvID)
	}
	return id, nil
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, ErrEnvNotFound):
		code = codes.NotFound
	case errors.Is(err, ErrAtCapacity):
		code = codes.ResourceExhausted
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, core.ErrInvalidAction),
		errors.Is(err, mapgen.ErrInvalidConfig):
		code = codes.InvalidArgument
	case errors.Is(err, core.ErrEpisodeDone):
		code = codes.FailedPrecondition
	case errors.Is(err, mapgen.ErrGenerationFailed):
		code = codes.Aborted
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}

// fromStatus maps a status returned by the service back onto the domain
// sentinels so that callers can keep using errors.Is.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = ErrEnvNotFound
	case codes.ResourceExhausted:
		sentinel = ErrAtCapacity
	case codes.InvalidArgument:
		sentinel = ErrBadRequest
	case codes.FailedPrecondition:
		sentinel = core.ErrEpisodeDone
	case codes.Aborted:
		sentinel = mapgen.ErrGenerationFailed
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}

// NewGRPCServer registers srv together with the health service, and
// reflection when enabled.
func NewGRPCServer(srv *Server, logger zerolog.Logger, enableReflection bool) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			RecoveryInterceptor(logger),
		),
	)
	RegisterEnvServiceServer(grpcServer, srv)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if enableReflection {
		reflection.Register(grpcServer)
	}
	return grpcServer, healthServer
}
