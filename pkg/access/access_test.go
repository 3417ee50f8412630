/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

func nodePortService(namespace, name string, port, nodePort int32) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeNodePort,
			Ports: []corev1.ServicePort{{Port: port, NodePort: nodePort}},
		},
	}
}

func nodeWithAddress(name string, addrType corev1.NodeAddressType, addr string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Addresses: []corev1.NodeAddress{{Type: addrType, Address: addr}},
		},
	}
}

func localProfile() *cluster.Profile {
	return &cluster.Profile{
		Distribution: cluster.DistributionMinikube,
		Exposure:     cluster.ExposureNodePort,
		Local:        true,
	}
}

func TestResolve_NodePort(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		nodePortService("demo", "demo-app", 3000, 30080),
		nodeWithAddress("minikube", corev1.NodeInternalIP, "192.168.49.2"),
	)
	r := NewReporter(clientset)

	info, err := r.Resolve(context.TODO(), localProfile(), "demo", "demo-app")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.49.2:30080", info.URL)
	assert.Empty(t, info.Instruction)
	assert.Equal(t, cluster.ExposureNodePort, info.Exposure)
}

func TestResolve_NodePort_PrefersExternalIP(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		nodePortService("demo", "demo-app", 3000, 30080),
		nodeWithAddress("node-a", corev1.NodeInternalIP, "10.0.0.5"),
		nodeWithAddress("node-b", corev1.NodeExternalIP, "203.0.113.7"),
	)
	r := NewReporter(clientset)

	info, err := r.Resolve(context.TODO(), localProfile(), "demo", "demo-app")
	require.NoError(t, err)
	assert.Equal(t, "http://203.0.113.7:30080", info.URL)
}

func TestResolve_NodePort_MissingService(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		nodeWithAddress("minikube", corev1.NodeInternalIP, "192.168.49.2"),
	)
	r := NewReporter(clientset)

	_, err := r.Resolve(context.TODO(), localProfile(), "demo", "demo-app")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStepFailed))
}

func TestResolve_LoadBalancer_Ready(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "demo-app", Namespace: "demo"},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeLoadBalancer,
			Ports: []corev1.ServicePort{{Port: 80}},
		},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{Hostname: "lb.example.com"}},
			},
		},
	}
	r := NewReporter(fake.NewSimpleClientset(svc))
	r.PollInterval = 10 * time.Millisecond

	profile := &cluster.Profile{
		Distribution: cluster.DistributionEKS,
		Exposure:     cluster.ExposureLoadBalancer,
		SupportsLB:   true,
	}
	info, err := r.Resolve(context.TODO(), profile, "demo", "demo-app")
	require.NoError(t, err)
	assert.Equal(t, "http://lb.example.com:80", info.URL)
}

func TestResolve_LoadBalancer_PendingFallsBack(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "demo-app", Namespace: "demo"},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeLoadBalancer,
			Ports: []corev1.ServicePort{{Port: 80}},
		},
	}
	r := NewReporter(fake.NewSimpleClientset(svc))
	r.PollInterval = 10 * time.Millisecond
	r.LBTimeout = 50 * time.Millisecond

	profile := &cluster.Profile{
		Distribution: cluster.DistributionGKE,
		Exposure:     cluster.ExposureLoadBalancer,
		SupportsLB:   true,
	}
	info, err := r.Resolve(context.TODO(), profile, "demo", "demo-app")
	require.NoError(t, err)
	assert.Empty(t, info.URL)
	assert.Contains(t, info.Instruction, "kubectl -n demo get svc demo-app")
}

func TestResolve_PortForwardInstruction(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "demo-app", Namespace: "demo"},
		Spec: corev1.ServiceSpec{
			Ports: []corev1.ServicePort{{Port: 3000}},
		},
	}
	r := NewReporter(fake.NewSimpleClientset(svc))

	profile := &cluster.Profile{
		Distribution: cluster.DistributionUnknown,
		Exposure:     cluster.ExposurePortForward,
	}
	info, err := r.Resolve(context.TODO(), profile, "demo", "demo-app")
	require.NoError(t, err)
	assert.Empty(t, info.URL)
	assert.Equal(t, "kubectl -n demo port-forward svc/demo-app 8080:3000", info.Instruction)
}
