// Package cluster creates provisioned workspace resources in a namespace and
// resolves them back through their identity labels.
package cluster

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

// Scheme returns a runtime.Scheme with core/v1 and route/v1 registered.
func Scheme() *runtime.Scheme {
	s := runtime.NewScheme()
	_ = corev1.AddToScheme(s)
	_ = routev1.AddToScheme(s)
	return s
}

// NewClient creates a controller-runtime client from the ambient kube config.
func NewClient() (client.Client, error) {
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("get k8s config: %w", err)
	}
	c, err := client.New(cfg, client.Options{Scheme: Scheme()})
	if err != nil {
		return nil, fmt.Errorf("create k8s client: %w", err)
	}
	return c, nil
}
