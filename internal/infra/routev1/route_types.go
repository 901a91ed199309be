// Package routev1 declares the route.openshift.io/v1 Route object used to
// expose workspace services, registered into a runtime scheme.
package routev1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	GroupVersion = schema.GroupVersion{Group: "route.openshift.io", Version: "v1"}

	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	AddToScheme = SchemeBuilder.AddToScheme
)

type RouteTargetReference struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Weight *int32 `json:"weight,omitempty"`
}

type RoutePort struct {
	TargetPort intstr.IntOrString `json:"targetPort"`
}

type TLSConfig struct {
	Termination                   string `json:"termination"`
	InsecureEdgeTerminationPolicy string `json:"insecureEdgeTerminationPolicy,omitempty"`
}

type RouteSpec struct {
	Host string               `json:"host,omitempty"`
	Path string               `json:"path,omitempty"`
	To   RouteTargetReference `json:"to"`
	Port *RoutePort           `json:"port,omitempty"`
	TLS  *TLSConfig           `json:"tls,omitempty"`
}

type RouteIngress struct {
	Host       string `json:"host,omitempty"`
	RouterName string `json:"routerName,omitempty"`
}

type RouteStatus struct {
	Ingress []RouteIngress `json:"ingress,omitempty"`
}

// Route is an externally reachable endpoint for a service in the workspace.
type Route struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   RouteSpec   `json:"spec,omitempty"`
	Status RouteStatus `json:"status,omitempty"`
}

type RouteList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Route `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Route{}, &RouteList{})
}
