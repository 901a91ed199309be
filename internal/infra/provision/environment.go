// Package provision adapts a declared workspace environment into
// cluster-deployable resources before they are created.
package provision

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

// RuntimeIdentity names the workspace runtime an infrastructure operation belongs to.
type RuntimeIdentity struct {
	WorkspaceID string `json:"workspace_id"`
	EnvName     string `json:"env_name,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
}

// InternalEnvironment is the resolved, infrastructure-independent environment.
type InternalEnvironment struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ClusterEnvironment holds the pods and routes of one workspace keyed by name.
// Before provisioning keys are the author-chosen names; afterwards they are
// the cluster-unique names.
type ClusterEnvironment struct {
	Pods   map[string]*corev1.Pod
	Routes map[string]*routev1.Route
}

func NewClusterEnvironment() *ClusterEnvironment {
	return &ClusterEnvironment{
		Pods:   make(map[string]*corev1.Pod),
		Routes: make(map[string]*routev1.Route),
	}
}

// AddPod declares a pod under its metadata name. A pod without labels gets an
// empty label set.
func (e *ClusterEnvironment) AddPod(pod *corev1.Pod) error {
	if pod == nil || pod.Name == "" {
		return fmt.Errorf("pod must have a name")
	}
	if _, ok := e.Pods[pod.Name]; ok {
		return fmt.Errorf("duplicate pod %q", pod.Name)
	}
	if pod.Labels == nil {
		pod.Labels = map[string]string{}
	}
	e.Pods[pod.Name] = pod
	return nil
}

// AddRoute declares a route under its metadata name. A route without labels
// gets an empty label set.
func (e *ClusterEnvironment) AddRoute(route *routev1.Route) error {
	if route == nil || route.Name == "" {
		return fmt.Errorf("route must have a name")
	}
	if _, ok := e.Routes[route.Name]; ok {
		return fmt.Errorf("duplicate route %q", route.Name)
	}
	if route.Labels == nil {
		route.Labels = map[string]string{}
	}
	e.Routes[route.Name] = route
	return nil
}

// DeepCopy copies the environment and every resource in it.
func (e *ClusterEnvironment) DeepCopy() *ClusterEnvironment {
	out := &ClusterEnvironment{
		Pods:   make(map[string]*corev1.Pod, len(e.Pods)),
		Routes: make(map[string]*routev1.Route, len(e.Routes)),
	}
	for k, p := range e.Pods {
		out.Pods[k] = p.DeepCopy()
	}
	for k, r := range e.Routes {
		out.Routes[k] = r.DeepCopy()
	}
	return out
}

// InfrastructureError aborts a provisioning pass.
type InfrastructureError struct {
	Reason   string
	Resource string
}

func (e *InfrastructureError) Error() string {
	if e.Resource == "" {
		return "infrastructure: " + e.Reason
	}
	return fmt.Sprintf("infrastructure: %s: %s", e.Resource, e.Reason)
}

const (
	ReasonMissingWorkspaceID = "missing workspace id"
	ReasonMissingResource    = "missing resource"
	ReasonMissingLabels      = "resource has no label set"
	ReasonDuplicateName      = "duplicate resource name"
)

// validate checks every precondition the label-writing provisioners rely on,
// so that a pass either fails before touching anything or runs to completion.
func validate(env *ClusterEnvironment, id RuntimeIdentity) error {
	if id.WorkspaceID == "" {
		return &InfrastructureError{Reason: ReasonMissingWorkspaceID}
	}
	podNames := make(map[string]bool, len(env.Pods))
	for key, pod := range env.Pods {
		if pod == nil {
			return &InfrastructureError{Reason: ReasonMissingResource, Resource: "pod/" + key}
		}
		if pod.Labels == nil {
			return &InfrastructureError{Reason: ReasonMissingLabels, Resource: "pod/" + key}
		}
		// Pod names are derived deterministically, so equal names would collide.
		if podNames[pod.Name] {
			return &InfrastructureError{Reason: ReasonDuplicateName, Resource: "pod/" + pod.Name}
		}
		podNames[pod.Name] = true
	}
	for key, route := range env.Routes {
		if route == nil {
			return &InfrastructureError{Reason: ReasonMissingResource, Resource: "route/" + key}
		}
		if route.Labels == nil {
			return &InfrastructureError{Reason: ReasonMissingLabels, Resource: "route/" + key}
		}
	}
	return nil
}
