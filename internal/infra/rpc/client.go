package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lzjever/mbos-wrt/internal/core"
)

type Client struct {
	conn *grpc.ClientConn
}

func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial infra %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionResponse, error) {
	var resp ProvisionResponse
	if err := c.invoke(ctx, provisionMethod, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Teardown(ctx context.Context, workspaceID string) error {
	var resp TeardownResponse
	return c.invoke(ctx, teardownMethod, TeardownRequest{WorkspaceID: workspaceID}, &resp)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return fromStatus(err)
	}
	return fromStruct(out, resp)
}

// fromStatus converts a gRPC status error back into an AppError.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return core.NewAppError(core.ErrRemote, err.Error())
	}
	var code core.ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = core.ErrBadRequest
	case codes.NotFound:
		code = core.ErrNotFound
	case codes.AlreadyExists:
		code = core.ErrConflict
	case codes.FailedPrecondition:
		code = core.ErrInfrastructure
	case codes.DeadlineExceeded:
		code = core.ErrRemoteTimeout
	case codes.Internal:
		code = core.ErrInternal
	default:
		code = core.ErrRemote
	}
	return core.NewAppError(code, st.Message())
}
