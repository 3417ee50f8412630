/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/deployctl/pkg/defaults"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
)

// waitForRollout blocks until the named Deployment has observed its
// latest generation and every updated replica is available. A NotFound
// error keeps waiting: the apply and the watch can race right after
// creation.
func waitForRollout(ctx context.Context, clientset client.Interface, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, defaults.RolloutPollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			dep, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}

			if dep.Generation > dep.Status.ObservedGeneration {
				return false, nil
			}
			want := int32(1)
			if dep.Spec.Replicas != nil {
				want = *dep.Spec.Replicas
			}
			if dep.Status.UpdatedReplicas < want {
				return false, nil
			}
			if dep.Status.AvailableReplicas < want {
				slog.Debug("waiting for replicas",
					"deployment", name,
					"available", dep.Status.AvailableReplicas,
					"want", want)
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeTimeout,
			fmt.Sprintf("deployment %q did not become available", name), err,
			map[string]any{"namespace": namespace, "timeout": timeout.String()})
	}
	return nil
}
