package provision

import (
	"errors"

	"github.com/lzjever/mbos-wrt/internal/observability"
)

// ConfigurationProvisioner adapts a cluster environment in place.
type ConfigurationProvisioner interface {
	Provision(env *InternalEnvironment, cenv *ClusterEnvironment, id RuntimeIdentity) error
}

// Chain runs provisioners in order against a working copy of the cluster
// environment and installs the result only if all of them succeed.
type Chain []ConfigurationProvisioner

func (c Chain) Provision(env *InternalEnvironment, cenv *ClusterEnvironment, id RuntimeIdentity) error {
	work := cenv.DeepCopy()
	for _, p := range c {
		if err := p.Provision(env, work, id); err != nil {
			observability.ProvisionFailuresTotal.WithLabelValues(failureReason(err)).Inc()
			return err
		}
	}
	cenv.Pods = work.Pods
	cenv.Routes = work.Routes
	return nil
}

// Standard is the chain applied to every workspace environment.
func Standard() Chain {
	return Chain{WorkspaceLabels{}, NewUniqueNames()}
}

func failureReason(err error) string {
	var infraErr *InfrastructureError
	if errors.As(err, &infraErr) {
		return infraErr.Reason
	}
	return "other"
}

// WorkspaceIDLabel marks every resource with the workspace it belongs to.
const WorkspaceIDLabel = "wrt.workspace-id"

// WorkspaceLabels stamps WorkspaceIDLabel on every pod and route.
type WorkspaceLabels struct{}

func (WorkspaceLabels) Provision(_ *InternalEnvironment, cenv *ClusterEnvironment, id RuntimeIdentity) error {
	if err := validate(cenv, id); err != nil {
		return err
	}
	for _, pod := range cenv.Pods {
		pod.Labels[WorkspaceIDLabel] = id.WorkspaceID
	}
	for _, route := range cenv.Routes {
		route.Labels[WorkspaceIDLabel] = id.WorkspaceID
	}
	return nil
}
