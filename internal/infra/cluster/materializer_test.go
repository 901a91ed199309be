package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

const testNamespace = "workspaces"

func provisioned(t *testing.T, workspaceID string, pods, routes []string) *provision.ClusterEnvironment {
	t.Helper()
	cenv := provision.NewClusterEnvironment()
	for _, name := range pods {
		require.NoError(t, cenv.AddPod(&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name}}))
	}
	for _, name := range routes {
		require.NoError(t, cenv.AddRoute(&routev1.Route{ObjectMeta: metav1.ObjectMeta{Name: name}}))
	}
	require.NoError(t, provision.Standard().Provision(&provision.InternalEnvironment{}, cenv, provision.RuntimeIdentity{WorkspaceID: workspaceID}))
	return cenv
}

func TestCreateAndFindPod(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(Scheme()).Build()
	m := NewMaterializer(c, testNamespace, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, provisioned(t, "workspace37", []string{"testPod"}, []string{"testRoute"})))

	pod := &corev1.Pod{}
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: testNamespace, Name: "workspace37.testPod"}, pod))
	assert.Equal(t, "testPod", pod.Labels[provision.OriginalNameLabel])

	found, err := m.FindPod(ctx, "workspace37", "testPod")
	require.NoError(t, err)
	assert.Equal(t, "workspace37.testPod", found.Name)

	var routes routev1.RouteList
	require.NoError(t, c.List(ctx, &routes, client.InNamespace(testNamespace)))
	require.Len(t, routes.Items, 1)
	assert.Equal(t, "testRoute", routes.Items[0].Labels[provision.OriginalNameLabel])
}

func TestFindPod_NotFound(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(Scheme()).Build()
	m := NewMaterializer(c, testNamespace, zap.NewNop())

	_, err := m.FindPod(context.Background(), "workspace37", "missing")
	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, core.ErrNotFound, appErr.Code)
}

func TestCreate_RollsBackOnFailure(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(Scheme()).
		WithInterceptorFuncs(interceptor.Funcs{
			Create: func(ctx context.Context, cl client.WithWatch, obj client.Object, opts ...client.CreateOption) error {
				if _, ok := obj.(*routev1.Route); ok {
					return apierrors.NewForbidden(schema.GroupResource{Group: "route.openshift.io", Resource: "routes"}, obj.GetName(), errors.New("quota"))
				}
				return cl.Create(ctx, obj, opts...)
			},
		}).
		Build()
	m := NewMaterializer(c, testNamespace, zap.NewNop())
	ctx := context.Background()

	err := m.Create(ctx, provisioned(t, "ws-1", []string{"a", "b"}, []string{"r"}))
	require.Error(t, err)
	assert.True(t, apierrors.IsForbidden(err))

	var pods corev1.PodList
	require.NoError(t, c.List(ctx, &pods, client.InNamespace(testNamespace)))
	assert.Empty(t, pods.Items)
}

func TestCreate_ExistingPodConflicts(t *testing.T) {
	existing := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "ws-1.a", Namespace: testNamespace}}
	c := fake.NewClientBuilder().WithScheme(Scheme()).WithObjects(existing).Build()
	m := NewMaterializer(c, testNamespace, zap.NewNop())

	err := m.Create(context.Background(), provisioned(t, "ws-1", []string{"a"}, nil))
	assert.True(t, apierrors.IsAlreadyExists(err))
}

func TestTeardown(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(Scheme()).Build()
	m := NewMaterializer(c, testNamespace, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, provisioned(t, "ws-1", []string{"a"}, []string{"r"})))
	require.NoError(t, m.Create(ctx, provisioned(t, "ws-2", []string{"a"}, []string{"r"})))

	require.NoError(t, m.Teardown(ctx, "ws-1"))

	var pods corev1.PodList
	require.NoError(t, c.List(ctx, &pods, client.InNamespace(testNamespace)))
	require.Len(t, pods.Items, 1)
	assert.Equal(t, "ws-2.a", pods.Items[0].Name)

	var routes routev1.RouteList
	require.NoError(t, c.List(ctx, &routes, client.InNamespace(testNamespace)))
	require.Len(t, routes.Items, 1)
	assert.Equal(t, "ws-2", routes.Items[0].Labels[provision.WorkspaceIDLabel])

	var appErr *core.AppError
	require.True(t, errors.As(m.Teardown(ctx, ""), &appErr))
	assert.Equal(t, core.ErrBadRequest, appErr.Code)
}
