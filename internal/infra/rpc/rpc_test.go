package rpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/infra/cluster"
	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

const testNamespace = "workspaces"

func startServer(t *testing.T, objs ...client.Object) (*Client, client.Client) {
	t.Helper()
	kube := fake.NewClientBuilder().WithScheme(cluster.Scheme()).WithObjects(objs...).Build()
	m := cluster.NewMaterializer(kube, testNamespace, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterInfraServer(srv, NewServer(provision.Standard(), m, zap.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, kube
}

func request(workspaceID string, dryRun bool) ProvisionRequest {
	return ProvisionRequest{
		WorkspaceID: workspaceID,
		Environment: provision.InternalEnvironment{Name: "default"},
		Pods: []corev1.Pod{{
			ObjectMeta: metav1.ObjectMeta{Name: "testPod"},
			Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "dev", Image: "quay.io/dev:latest"}}},
		}},
		Routes: []routev1.Route{{
			ObjectMeta: metav1.ObjectMeta{Name: "testRoute"},
			Spec:       routev1.RouteSpec{To: routev1.RouteTargetReference{Kind: "Service", Name: "dev"}},
		}},
		DryRun: dryRun,
	}
}

func codeOf(t *testing.T, err error) core.ErrorCode {
	t.Helper()
	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestProvision_DryRun(t *testing.T) {
	c, kube := startServer(t)
	ctx := context.Background()

	resp, err := c.Provision(ctx, request("workspace37", true))
	require.NoError(t, err)

	require.Len(t, resp.Pods, 1)
	assert.Equal(t, "workspace37.testPod", resp.Pods[0].Name)
	assert.Equal(t, "testPod", resp.Pods[0].Labels[provision.OriginalNameLabel])
	assert.Equal(t, "workspace37", resp.Pods[0].Labels[provision.WorkspaceIDLabel])
	assert.Equal(t, "quay.io/dev:latest", resp.Pods[0].Spec.Containers[0].Image)

	require.Len(t, resp.Routes, 1)
	assert.True(t, strings.HasPrefix(resp.Routes[0].Name, provision.RoutePrefix))
	assert.Len(t, resp.Routes[0].Name, len(provision.RoutePrefix)+provision.RouteSuffixSize)
	assert.Equal(t, "testRoute", resp.Routes[0].Labels[provision.OriginalNameLabel])

	var pods corev1.PodList
	require.NoError(t, kube.List(ctx, &pods))
	assert.Empty(t, pods.Items)
}

func TestProvision_Materializes(t *testing.T) {
	c, kube := startServer(t)
	ctx := context.Background()

	_, err := c.Provision(ctx, request("workspace37", false))
	require.NoError(t, err)

	pod := &corev1.Pod{}
	require.NoError(t, kube.Get(ctx, client.ObjectKey{Namespace: testNamespace, Name: "workspace37.testPod"}, pod))
	assert.Equal(t, "testPod", pod.Labels[provision.OriginalNameLabel])

	var routes routev1.RouteList
	require.NoError(t, kube.List(ctx, &routes, client.InNamespace(testNamespace)))
	assert.Len(t, routes.Items, 1)
}

func TestProvision_MissingWorkspaceID(t *testing.T) {
	c, _ := startServer(t)

	_, err := c.Provision(context.Background(), request("", true))
	assert.Equal(t, core.ErrInfrastructure, codeOf(t, err))
}

func TestProvision_DuplicatePod(t *testing.T) {
	c, _ := startServer(t)
	req := request("ws-1", true)
	req.Pods = append(req.Pods, req.Pods[0])

	_, err := c.Provision(context.Background(), req)
	assert.Equal(t, core.ErrBadRequest, codeOf(t, err))
}

func TestProvision_AlreadyExists(t *testing.T) {
	existing := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "ws-1.testPod", Namespace: testNamespace}}
	c, kube := startServer(t, existing)
	ctx := context.Background()

	_, err := c.Provision(ctx, request("ws-1", false))
	assert.Equal(t, core.ErrConflict, codeOf(t, err))

	var routes routev1.RouteList
	require.NoError(t, kube.List(ctx, &routes, client.InNamespace(testNamespace)))
	assert.Empty(t, routes.Items)
}

func TestTeardown(t *testing.T) {
	c, kube := startServer(t)
	ctx := context.Background()

	_, err := c.Provision(ctx, request("ws-1", false))
	require.NoError(t, err)
	require.NoError(t, c.Teardown(ctx, "ws-1"))

	var pods corev1.PodList
	require.NoError(t, kube.List(ctx, &pods, client.InNamespace(testNamespace)))
	assert.Empty(t, pods.Items)

	assert.Equal(t, core.ErrBadRequest, codeOf(t, c.Teardown(ctx, "")))
}
