/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"github.com/NVIDIA/deployctl/pkg/version"
)

// Distribution identifies the Kubernetes distribution serving the
// active context.
type Distribution string

const (
	// DistributionMinikube is a local minikube cluster.
	DistributionMinikube Distribution = "minikube"
	// DistributionKind is a local kind (Kubernetes-in-Docker) cluster.
	DistributionKind Distribution = "kind"
	// DistributionK3s is a local or edge k3s cluster.
	DistributionK3s Distribution = "k3s"
	// DistributionMicroK8s is a local MicroK8s cluster.
	DistributionMicroK8s Distribution = "microk8s"
	// DistributionEKS is AWS Elastic Kubernetes Service.
	DistributionEKS Distribution = "eks"
	// DistributionGKE is Google Kubernetes Engine.
	DistributionGKE Distribution = "gke"
	// DistributionAKS is Azure Kubernetes Service.
	DistributionAKS Distribution = "aks"
	// DistributionUnknown is the conservative fallback when no
	// signature matches.
	DistributionUnknown Distribution = "unknown"
)

// ExposureMode selects how the deployed service is reached.
type ExposureMode string

const (
	// ExposureNodePort exposes the service on a node port (local clusters).
	ExposureNodePort ExposureMode = "NodePort"
	// ExposureLoadBalancer exposes the service via an external load
	// balancer (managed clouds).
	ExposureLoadBalancer ExposureMode = "LoadBalancer"
	// ExposurePortForward requires manual port-forwarding (unknown
	// clusters, most conservative).
	ExposurePortForward ExposureMode = "PortForward"
)

// Profile classifies the active cluster and the service-exposure
// strategy derived from it. Profiles are created once by Detect at
// startup and read-only afterward.
type Profile struct {
	Distribution Distribution `json:"distribution" yaml:"distribution"`
	Exposure     ExposureMode `json:"exposure" yaml:"exposure"`
	IngressClass string       `json:"ingressClass" yaml:"ingressClass"`
	SupportsLB   bool         `json:"supportsLoadBalancer" yaml:"supportsLoadBalancer"`
	Local        bool         `json:"local" yaml:"local"`
	MultiNode    bool         `json:"multiNode" yaml:"multiNode"`
	NodeCount    int          `json:"nodeCount" yaml:"nodeCount"`
	// KubernetesVersion is parsed from the first node's kubelet version.
	// Zero value when no node reported a parseable version.
	KubernetesVersion version.Version `json:"kubernetesVersion,omitempty" yaml:"kubernetesVersion,omitempty"`
	// ProviderID is the raw node spec.providerID the classification was
	// derived from, kept for diagnostics. Empty on label-only matches.
	ProviderID string `json:"providerId,omitempty" yaml:"providerId,omitempty"`
}

// String returns a short human-readable summary of the profile.
func (p *Profile) String() string {
	kind := "managed"
	if p.Local {
		kind = "local"
	}
	if p.Distribution == DistributionUnknown {
		kind = "unknown"
	}
	return string(p.Distribution) + " (" + kind + ", exposure=" + string(p.Exposure) + ")"
}
