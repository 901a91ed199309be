package provision

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
	"github.com/lzjever/mbos-wrt/internal/namegen"
	"github.com/lzjever/mbos-wrt/internal/observability"
)

const (
	// OriginalNameLabel keeps the name a resource was declared with.
	OriginalNameLabel = "original-name"
	RoutePrefix       = "route"
	RouteSuffixSize   = 8
	Separator         = '.'
)

// UniqueNames renames pods to "<workspace id>.<declared name>" and gives
// routes random "route" + 8 character names, recording the declared name in
// OriginalNameLabel. Running it twice rewrites already-rewritten names.
type UniqueNames struct {
	generate func(prefix string, length int) string
}

func NewUniqueNames() *UniqueNames {
	return &UniqueNames{generate: namegen.Generate}
}

func (u *UniqueNames) Provision(_ *InternalEnvironment, cenv *ClusterEnvironment, id RuntimeIdentity) error {
	if err := validate(cenv, id); err != nil {
		return err
	}

	pods := make([]*corev1.Pod, 0, len(cenv.Pods))
	for _, pod := range cenv.Pods {
		pods = append(pods, pod)
	}
	clear(cenv.Pods)
	for _, pod := range pods {
		pod.Labels[OriginalNameLabel] = pod.Name
		name := id.WorkspaceID + string(Separator) + pod.Name
		pod.Name = name
		cenv.setPod(name, pod)
	}

	routes := make([]*routev1.Route, 0, len(cenv.Routes))
	for _, route := range cenv.Routes {
		routes = append(routes, route)
	}
	clear(cenv.Routes)
	for _, route := range routes {
		route.Labels[OriginalNameLabel] = route.Name
		name := u.generate(RoutePrefix, RouteSuffixSize)
		for cenv.Routes[name] != nil {
			name = u.generate(RoutePrefix, RouteSuffixSize)
		}
		route.Name = name
		cenv.setRoute(name, route)
	}

	observability.ProvisionedResourcesTotal.WithLabelValues("pod").Add(float64(len(pods)))
	observability.ProvisionedResourcesTotal.WithLabelValues("route").Add(float64(len(routes)))
	return nil
}

func (e *ClusterEnvironment) setPod(name string, pod *corev1.Pod) {
	if e.Pods == nil {
		e.Pods = make(map[string]*corev1.Pod)
	}
	e.Pods[name] = pod
}

func (e *ClusterEnvironment) setRoute(name string, route *routev1.Route) {
	if e.Routes == nil {
		e.Routes = make(map[string]*routev1.Route)
	}
	e.Routes[name] = route
}
