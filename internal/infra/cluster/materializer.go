package cluster

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
	"github.com/lzjever/mbos-wrt/internal/observability"
)

type Materializer struct {
	client    client.Client
	namespace string
	log       *zap.Logger
}

func NewMaterializer(c client.Client, namespace string, log *zap.Logger) *Materializer {
	return &Materializer{client: c, namespace: namespace, log: log}
}

func (m *Materializer) Namespace() string {
	return m.namespace
}

// Create creates every pod and then every route of a provisioned environment.
// If any create fails the objects created so far are deleted again.
func (m *Materializer) Create(ctx context.Context, cenv *provision.ClusterEnvironment) error {
	start := time.Now()
	defer func() {
		observability.MaterializeDuration.Observe(time.Since(start).Seconds())
	}()

	created := make([]client.Object, 0, len(cenv.Pods)+len(cenv.Routes))
	for _, name := range sortedKeys(cenv.Pods) {
		pod := cenv.Pods[name]
		pod.Namespace = m.namespace
		if err := m.client.Create(ctx, pod); err != nil {
			m.rollback(ctx, created)
			return fmt.Errorf("create pod %s: %w", name, err)
		}
		created = append(created, pod)
	}
	for _, name := range sortedKeys(cenv.Routes) {
		route := cenv.Routes[name]
		route.Namespace = m.namespace
		if err := m.client.Create(ctx, route); err != nil {
			m.rollback(ctx, created)
			return fmt.Errorf("create route %s: %w", name, err)
		}
		created = append(created, route)
	}
	m.log.Info("environment materialized",
		zap.String("namespace", m.namespace),
		zap.Int("pods", len(cenv.Pods)),
		zap.Int("routes", len(cenv.Routes)),
	)
	return nil
}

func (m *Materializer) rollback(ctx context.Context, created []client.Object) {
	for i := len(created) - 1; i >= 0; i-- {
		obj := created[i]
		if err := m.client.Delete(ctx, obj); err != nil && !apierrors.IsNotFound(err) {
			m.log.Error("rollback delete failed", zap.String("name", obj.GetName()), zap.Error(err))
		}
	}
}

// FindPod resolves a pod by the workspace it belongs to and the name it was declared with.
func (m *Materializer) FindPod(ctx context.Context, workspaceID, originalName string) (*corev1.Pod, error) {
	var list corev1.PodList
	if err := m.client.List(ctx, &list, client.InNamespace(m.namespace), client.MatchingLabels{
		provision.WorkspaceIDLabel:  workspaceID,
		provision.OriginalNameLabel: originalName,
	}); err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, core.NewAppError(core.ErrNotFound, fmt.Sprintf("pod %q of workspace %s not found", originalName, workspaceID))
	}
	return &list.Items[0], nil
}

// Teardown deletes every pod and route labelled with the workspace id.
func (m *Materializer) Teardown(ctx context.Context, workspaceID string) error {
	if workspaceID == "" {
		return core.NewAppError(core.ErrBadRequest, "workspace id required")
	}
	opts := []client.DeleteAllOfOption{
		client.InNamespace(m.namespace),
		client.MatchingLabels{provision.WorkspaceIDLabel: workspaceID},
	}
	if err := m.client.DeleteAllOf(ctx, &corev1.Pod{}, opts...); err != nil {
		return fmt.Errorf("delete pods: %w", err)
	}
	if err := m.client.DeleteAllOf(ctx, &routev1.Route{}, opts...); err != nil {
		return fmt.Errorf("delete routes: %w", err)
	}
	observability.WorkspaceLogger(m.log, workspaceID).Info("environment torn down", zap.String("namespace", m.namespace))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
