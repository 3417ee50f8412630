/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

func node(name, providerID string, labels, annotations map[string]string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: corev1.NodeSpec{ProviderID: providerID},
	}
}

func TestDetect_Distributions(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []*corev1.Node
		wantDist  Distribution
		wantExpo  ExposureMode
		wantLocal bool
		wantLB    bool
	}{
		{
			name: "minikube single node",
			nodes: []*corev1.Node{
				node("minikube", "", map[string]string{
					"minikube.k8s.io/version": "v1.34.0",
				}, nil),
			},
			wantDist:  DistributionMinikube,
			wantExpo:  ExposureNodePort,
			wantLocal: true,
		},
		{
			name: "kind via providerID",
			nodes: []*corev1.Node{
				node("kind-control-plane", "kind://docker/kind/kind-control-plane", nil, nil),
			},
			wantDist:  DistributionKind,
			wantExpo:  ExposureNodePort,
			wantLocal: true,
		},
		{
			name: "k3s via instance type label",
			nodes: []*corev1.Node{
				node("k3s-server", "", map[string]string{
					"node.kubernetes.io/instance-type": "k3s",
				}, nil),
			},
			wantDist:  DistributionK3s,
			wantExpo:  ExposureNodePort,
			wantLocal: true,
		},
		{
			name: "k3s via annotation",
			nodes: []*corev1.Node{
				node("edge-0", "", nil, map[string]string{
					"k3s.io/hostname": "edge-0",
				}),
			},
			wantDist:  DistributionK3s,
			wantExpo:  ExposureNodePort,
			wantLocal: true,
		},
		{
			name: "microk8s",
			nodes: []*corev1.Node{
				node("mk8s-0", "", map[string]string{
					"microk8s.io/cluster": "true",
				}, nil),
			},
			wantDist:  DistributionMicroK8s,
			wantExpo:  ExposureNodePort,
			wantLocal: true,
		},
		{
			name: "eks via providerID",
			nodes: []*corev1.Node{
				node("ip-10-0-1-20", "aws:///us-west-2a/i-0123456789abcdef0", nil, nil),
			},
			wantDist: DistributionEKS,
			wantExpo: ExposureLoadBalancer,
			wantLB:   true,
		},
		{
			name: "gke via label",
			nodes: []*corev1.Node{
				node("gke-node-1", "gce://proj/us-central1-a/gke-node-1", map[string]string{
					"cloud.google.com/gke-nodepool": "default-pool",
				}, nil),
			},
			wantDist: DistributionGKE,
			wantExpo: ExposureLoadBalancer,
			wantLB:   true,
		},
		{
			name: "aks via label",
			nodes: []*corev1.Node{
				node("aks-agentpool-0", "azure:///subscriptions/xxx/virtualMachines/0", map[string]string{
					"kubernetes.azure.com/cluster": "MC_rg_cluster_eastus",
				}, nil),
			},
			wantDist: DistributionAKS,
			wantExpo: ExposureLoadBalancer,
			wantLB:   true,
		},
		{
			name: "unknown bare metal falls back conservative",
			nodes: []*corev1.Node{
				node("metal-0", "", map[string]string{
					"kubernetes.io/hostname": "metal-0",
				}, nil),
			},
			wantDist: DistributionUnknown,
			wantExpo: ExposurePortForward,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs := make([]runtime.Object, 0, len(tt.nodes))
			for _, n := range tt.nodes {
				objs = append(objs, n)
			}
			clientset := fake.NewSimpleClientset(objs...)

			profile, err := Detect(context.TODO(), clientset)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDist, profile.Distribution)
			assert.Equal(t, tt.wantExpo, profile.Exposure)
			assert.Equal(t, tt.wantLocal, profile.Local)
			assert.Equal(t, tt.wantLB, profile.SupportsLB)
			assert.Equal(t, len(tt.nodes), profile.NodeCount)
		})
	}
}

// EKS nodes carry generic engine metadata on top of the AWS provider
// signals; the managed signature must win over any local heuristic.
func TestDetect_ManagedWinsOverGeneric(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		node("ip-10-0-1-20", "aws:///us-west-2a/i-0abc", map[string]string{
			"eks.amazonaws.com/nodegroup":      "workers",
			"node.kubernetes.io/instance-type": "m5.large",
			"kubernetes.io/hostname":           "ip-10-0-1-20",
		}, nil),
	)

	profile, err := Detect(context.TODO(), clientset)
	require.NoError(t, err)
	assert.Equal(t, DistributionEKS, profile.Distribution)
}

func TestDetect_Deterministic(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		node("minikube", "", map[string]string{"minikube.k8s.io/version": "v1.34.0"}, nil),
	)

	first, err := Detect(context.TODO(), clientset)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Detect(context.TODO(), clientset)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDetect_MultiNode(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		node("kind-control-plane", "kind://docker/kind/kind-control-plane", nil, nil),
		node("kind-worker", "kind://docker/kind/kind-worker", nil, nil),
	)

	profile, err := Detect(context.TODO(), clientset)
	require.NoError(t, err)
	assert.True(t, profile.MultiNode)
	assert.Equal(t, 2, profile.NodeCount)
}

func TestDetect_Unreachable(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes",
		func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errors.New("connection refused")
		})

	_, err := Detect(context.TODO(), clientset)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeClusterUnreachable))
}

func TestDetect_KubernetesVersion(t *testing.T) {
	n := node("ip-10-0-1-20", "aws:///us-west-2a/i-0abc",
		map[string]string{"eks.amazonaws.com/nodegroup": "workers"}, nil)
	n.Status.NodeInfo.KubeletVersion = "v1.29.0-eks-3025e55"

	profile, err := Detect(context.TODO(), fake.NewSimpleClientset(n))
	require.NoError(t, err)
	assert.True(t, profile.KubernetesVersion.IsValid())
	assert.Equal(t, "1.29.0", profile.KubernetesVersion.String())
	assert.Equal(t, "-eks-3025e55", profile.KubernetesVersion.Extras)
}

func TestDetect_NoNodes(t *testing.T) {
	profile, err := Detect(context.TODO(), fake.NewSimpleClientset())
	require.NoError(t, err)
	assert.Equal(t, DistributionUnknown, profile.Distribution)
	assert.Equal(t, ExposurePortForward, profile.Exposure)
	assert.False(t, profile.SupportsLB)
}
