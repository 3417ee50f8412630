/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"context"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/version"
)

// signature is a typed predicate that recognizes one distribution from
// node metadata.
type signature struct {
	distribution Distribution
	matches      func(node *corev1.Node) bool
}

// signatures are evaluated in order; the first match wins. Order matters
// because some signals are subsets of others: managed distributions carry
// provider labels on top of generic engine metadata, so they are checked
// before providerID prefixes, and providerID prefixes before the local
// heuristics that would otherwise shadow them.
var signatures = []signature{
	{DistributionEKS, func(n *corev1.Node) bool {
		return hasLabelPrefix(n, "eks.amazonaws.com/") || hasProviderPrefix(n, "aws://")
	}},
	{DistributionGKE, func(n *corev1.Node) bool {
		return hasLabelPrefix(n, "cloud.google.com/gke-") || hasProviderPrefix(n, "gce://")
	}},
	{DistributionAKS, func(n *corev1.Node) bool {
		return hasLabelPrefix(n, "kubernetes.azure.com/") || hasProviderPrefix(n, "azure://")
	}},
	{DistributionMinikube, func(n *corev1.Node) bool {
		return hasLabelPrefix(n, "minikube.k8s.io/")
	}},
	{DistributionKind, func(n *corev1.Node) bool {
		return hasProviderPrefix(n, "kind://")
	}},
	{DistributionK3s, func(n *corev1.Node) bool {
		return hasProviderPrefix(n, "k3s://") ||
			n.Labels["node.kubernetes.io/instance-type"] == "k3s" ||
			hasAnnotationPrefix(n, "k3s.io/")
	}},
	{DistributionMicroK8s, func(n *corev1.Node) bool {
		return n.Labels["microk8s.io/cluster"] == "true"
	}},
}

// Detect classifies the active cluster by inspecting node metadata.
// An unreachable API server is fatal (CLUSTER_UNREACHABLE) and never
// retried, since every subsequent pipeline step depends on connectivity.
// If no signature matches, the profile falls back to the most
// conservative capability set rather than guessing.
func Detect(ctx context.Context, clientset client.Interface) (*Profile, error) {
	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeClusterUnreachable,
			"failed to list cluster nodes", err)
	}
	if len(nodes.Items) == 0 {
		slog.Warn("cluster reports no nodes, using conservative profile")
		return profileFor(DistributionUnknown, nil), nil
	}

	for _, sig := range signatures {
		for i := range nodes.Items {
			if sig.matches(&nodes.Items[i]) {
				p := profileFor(sig.distribution, nodes.Items)
				p.ProviderID = nodes.Items[i].Spec.ProviderID
				slog.Debug("cluster classified",
					"distribution", p.Distribution,
					"nodes", p.NodeCount,
					"providerID", p.ProviderID)
				return p, nil
			}
		}
	}

	slog.Warn("no distribution signature matched, using conservative profile",
		"nodes", len(nodes.Items))
	return profileFor(DistributionUnknown, nodes.Items), nil
}

// profileFor derives exposure strategy and capability attributes for a
// classified distribution.
func profileFor(d Distribution, nodes []corev1.Node) *Profile {
	p := &Profile{
		Distribution: d,
		NodeCount:    len(nodes),
		MultiNode:    len(nodes) > 1,
	}

	// kubelet version stands in for the cluster version; suffixes like
	// "-eks-3025e55" are preserved in Extras
	for i := range nodes {
		if v, err := version.Parse(nodes[i].Status.NodeInfo.KubeletVersion); err == nil {
			p.KubernetesVersion = v
			break
		}
	}

	switch d {
	case DistributionEKS, DistributionGKE, DistributionAKS:
		p.Exposure = ExposureLoadBalancer
		p.SupportsLB = true
		p.IngressClass = managedIngressClass(d)
	case DistributionMinikube, DistributionKind, DistributionMicroK8s:
		p.Exposure = ExposureNodePort
		p.Local = true
		p.IngressClass = "nginx"
	case DistributionK3s:
		p.Exposure = ExposureNodePort
		p.Local = true
		// k3s ships traefik as the bundled ingress controller
		p.IngressClass = "traefik"
	default:
		p.Exposure = ExposurePortForward
		p.IngressClass = "nginx"
	}

	return p
}

func managedIngressClass(d Distribution) string {
	switch d {
	case DistributionEKS:
		return "alb"
	case DistributionGKE:
		return "gce"
	default:
		return "nginx"
	}
}

func hasProviderPrefix(n *corev1.Node, prefix string) bool {
	return strings.HasPrefix(n.Spec.ProviderID, prefix)
}

func hasLabelPrefix(n *corev1.Node, prefix string) bool {
	for k := range n.Labels {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func hasAnnotationPrefix(n *corev1.Node, prefix string) bool {
	for k := range n.Annotations {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
