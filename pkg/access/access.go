/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package access

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/defaults"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
)

// Info describes how to reach the deployed workload.
type Info struct {
	// URL is the resolved endpoint, when one could be determined.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Instruction is the manual command to run when no endpoint could be
	// resolved (port-forward profiles, pending load balancers).
	Instruction string `json:"instruction,omitempty" yaml:"instruction,omitempty"`
	// Exposure records the strategy that produced this info.
	Exposure  cluster.ExposureMode `json:"exposure" yaml:"exposure"`
	Service   string               `json:"service" yaml:"service"`
	Namespace string               `json:"namespace" yaml:"namespace"`
}

// Reporter resolves the reachable endpoint for a deployed service based
// on the detected cluster profile.
type Reporter struct {
	clientset client.Interface

	// LBTimeout bounds how long Resolve waits for a LoadBalancer address
	// before falling back to the manual-check instruction. The reporter
	// never blocks indefinitely.
	LBTimeout time.Duration
	// PollInterval is the LoadBalancer status recheck interval.
	PollInterval time.Duration
}

// NewReporter creates a Reporter with bounded LoadBalancer polling.
func NewReporter(clientset client.Interface) *Reporter {
	return &Reporter{
		clientset:    clientset,
		LBTimeout:    defaults.LoadBalancerTimeout,
		PollInterval: defaults.AccessPollInterval,
	}
}

// Resolve returns access information for service in namespace according
// to the profile's exposure mode.
func (r *Reporter) Resolve(ctx context.Context, profile *cluster.Profile, namespace, service string) (*Info, error) {
	info := &Info{
		Exposure:  profile.Exposure,
		Service:   service,
		Namespace: namespace,
	}

	switch profile.Exposure {
	case cluster.ExposureNodePort:
		url, err := r.nodePortURL(ctx, namespace, service)
		if err != nil {
			return nil, err
		}
		info.URL = url

	case cluster.ExposureLoadBalancer:
		url, err := r.loadBalancerURL(ctx, namespace, service)
		if err != nil {
			return nil, err
		}
		if url == "" {
			// Address has not materialized within the bound; hand the
			// operator the manual check instead of blocking.
			info.Instruction = fmt.Sprintf(
				"kubectl -n %s get svc %s -w -o jsonpath='{.status.loadBalancer.ingress[0]}'",
				namespace, service)
		}
		info.URL = url

	default:
		info.Instruction = fmt.Sprintf("kubectl -n %s port-forward svc/%s 8080:%s",
			namespace, service, servicePortHint(ctx, r.clientset, namespace, service))
	}

	return info, nil
}

// nodePortURL resolves host:nodePort for local clusters.
func (r *Reporter) nodePortURL(ctx context.Context, namespace, service string) (string, error) {
	svc, err := r.clientset.CoreV1().Services(namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeStepFailed,
			fmt.Sprintf("failed to get service %s/%s", namespace, service), err)
	}

	var nodePort int32
	for _, port := range svc.Spec.Ports {
		if port.NodePort > 0 {
			nodePort = port.NodePort
			break
		}
	}
	if nodePort == 0 {
		return "", apperrors.Newf(apperrors.ErrCodeStepFailed,
			"service %s/%s has no NodePort", namespace, service)
	}

	host, err := r.nodeAddress(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", host, nodePort), nil
}

// nodeAddress picks a reachable node address, preferring external IPs.
func (r *Reporter) nodeAddress(ctx context.Context) (string, error) {
	nodes, err := r.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeClusterUnreachable,
			"failed to list nodes for address resolution", err)
	}
	if len(nodes.Items) == 0 {
		return "", apperrors.New(apperrors.ErrCodeStepFailed, "cluster reports no nodes")
	}

	for _, addrType := range []corev1.NodeAddressType{corev1.NodeExternalIP, corev1.NodeInternalIP} {
		for _, node := range nodes.Items {
			for _, addr := range node.Status.Addresses {
				if addr.Type == addrType && addr.Address != "" {
					return addr.Address, nil
				}
			}
		}
	}

	return "", apperrors.New(apperrors.ErrCodeStepFailed, "no node addresses available")
}

// loadBalancerURL polls for an external address with a bounded timeout.
// An empty return without error means the address is still pending.
func (r *Reporter) loadBalancerURL(ctx context.Context, namespace, service string) (string, error) {
	var url string
	err := wait.PollUntilContextTimeout(ctx, r.PollInterval, r.LBTimeout, true,
		func(ctx context.Context) (bool, error) {
			svc, err := r.clientset.CoreV1().Services(namespace).Get(ctx, service, metav1.GetOptions{})
			if err != nil {
				return false, apperrors.Wrap(apperrors.ErrCodeStepFailed,
					fmt.Sprintf("failed to get service %s/%s", namespace, service), err)
			}

			for _, ingress := range svc.Status.LoadBalancer.Ingress {
				host := ingress.Hostname
				if host == "" {
					host = ingress.IP
				}
				if host != "" {
					port := int32(80)
					if len(svc.Spec.Ports) > 0 {
						port = svc.Spec.Ports[0].Port
					}
					url = fmt.Sprintf("http://%s:%d", host, port)
					return true, nil
				}
			}
			return false, nil
		})

	switch {
	case err == nil:
		return url, nil
	case apperrors.IsCode(err, apperrors.ErrCodeStepFailed):
		return "", err
	case ctx.Err() != nil:
		return "", apperrors.Wrap(apperrors.ErrCodeTimeout,
			"canceled while waiting for load balancer address", ctx.Err())
	default:
		// Bounded wait expired; not fatal, caller prints the manual check.
		slog.Warn("load balancer address not ready within timeout",
			"namespace", namespace,
			"service", service,
			"timeout", r.LBTimeout)
		return "", nil
	}
}

// servicePortHint returns the service port for the port-forward
// instruction, defaulting to 80 when lookup fails.
func servicePortHint(ctx context.Context, clientset client.Interface, namespace, service string) string {
	svc, err := clientset.CoreV1().Services(namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil || len(svc.Spec.Ports) == 0 {
		return "80"
	}
	return fmt.Sprintf("%d", svc.Spec.Ports[0].Port)
}
