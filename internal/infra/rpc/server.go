package rpc

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

// Materializer creates and removes provisioned resources in the cluster.
type Materializer interface {
	Create(ctx context.Context, cenv *provision.ClusterEnvironment) error
	Teardown(ctx context.Context, workspaceID string) error
}

type Server struct {
	provisioner  provision.ConfigurationProvisioner
	materializer Materializer
	log          *zap.Logger
}

func NewServer(p provision.ConfigurationProvisioner, m Materializer, log *zap.Logger) *Server {
	return &Server{provisioner: p, materializer: m, log: log}
}

func (s *Server) Provision(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ProvisionRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	log := s.log.With(
		zap.String("workspace_id", req.WorkspaceID),
		zap.String("op", "provision"),
		zap.Bool("dry_run", req.DryRun),
	)
	log.Info("infra: provision received", zap.Int("pods", len(req.Pods)), zap.Int("routes", len(req.Routes)))

	cenv := provision.NewClusterEnvironment()
	for i := range req.Pods {
		if err := cenv.AddPod(&req.Pods[i]); err != nil {
			return nil, toStatus(core.NewAppError(core.ErrBadRequest, err.Error()))
		}
	}
	for i := range req.Routes {
		if err := cenv.AddRoute(&req.Routes[i]); err != nil {
			return nil, toStatus(core.NewAppError(core.ErrBadRequest, err.Error()))
		}
	}

	id := provision.RuntimeIdentity{WorkspaceID: req.WorkspaceID, EnvName: req.Environment.Name}
	if err := s.provisioner.Provision(&req.Environment, cenv, id); err != nil {
		log.Warn("infra: provisioning failed", zap.Error(err))
		return nil, toStatus(err)
	}
	if !req.DryRun {
		if err := s.materializer.Create(ctx, cenv); err != nil {
			log.Error("infra: materialize failed", zap.Error(err))
			return nil, toStatus(err)
		}
	}

	resp := ProvisionResponse{
		Pods:   make([]corev1.Pod, 0, len(cenv.Pods)),
		Routes: make([]routev1.Route, 0, len(cenv.Routes)),
	}
	for _, pod := range cenv.Pods {
		resp.Pods = append(resp.Pods, *pod)
	}
	for _, route := range cenv.Routes {
		resp.Routes = append(resp.Routes, *route)
	}
	slices.SortFunc(resp.Pods, func(a, b corev1.Pod) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(resp.Routes, func(a, b routev1.Route) int { return strings.Compare(a.Name, b.Name) })

	log.Info("infra: provision succeeded")
	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) Teardown(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TeardownRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.materializer.Teardown(ctx, req.WorkspaceID); err != nil {
		s.log.Error("infra: teardown failed", zap.String("workspace_id", req.WorkspaceID), zap.Error(err))
		return nil, toStatus(err)
	}
	out, err := toStruct(TeardownResponse{})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	var infraErr *provision.InfrastructureError
	var code core.ErrorCode
	switch {
	case errors.As(err, &infraErr):
		code = core.ErrInfrastructure
	case apierrors.IsAlreadyExists(err) || apierrors.IsConflict(err):
		code = core.ErrConflict
	case apierrors.IsNotFound(err):
		code = core.ErrNotFound
	default:
		code = core.AsAppError(err).Code
	}
	return status.Error(code.GRPCCode(), err.Error())
}
