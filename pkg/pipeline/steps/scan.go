/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// scanReport is the subset of the scanner's JSON output the step reads.
type scanReport struct {
	ArtifactName string `json:"ArtifactName"`
	Results      []struct {
		Vulnerabilities []struct {
			Severity string `json:"Severity"`
		} `json:"Vulnerabilities"`
	} `json:"Results"`
}

// ImageScan scans the pushed image for known vulnerabilities with the
// configured scanner (trivy). Findings are reported, not enforced: the
// severity counts land in the run report and the pushed metrics, and
// only a scanner failure stops the pipeline. The scan is read-only, so
// it does not advance the state machine beyond ImageReady.
func ImageScan() pipeline.Step {
	return pipeline.Step{
		Name:    "image-scan",
		Reaches: pipeline.StateImageReady,
		Condition: func(env *pipeline.Env) bool {
			return !env.SkipScan
		},
		Run: func(ctx context.Context, env *pipeline.Env) error {
			ref := env.Config.ImageRef()

			res, err := env.Invoker.Run(ctx, runner.Spec{
				Name: env.Config.ScanTool,
				Args: []string{"image", "--format", "json", "--quiet", ref},
			})
			if err != nil {
				return err
			}

			summary, err := parseScanOutput(ref, []byte(res.Stdout))
			if err != nil {
				return err
			}
			env.Vulnerabilities = summary
			pipeline.RecordVulnerabilities(summary)

			if summary.Severities["CRITICAL"] > 0 {
				slog.Warn("image has critical vulnerabilities",
					"image", ref,
					"critical", summary.Severities["CRITICAL"],
					"total", summary.Total)
			} else {
				slog.Info("image scanned",
					"image", ref,
					"total", summary.Total)
			}
			return nil
		},
	}
}

// parseScanOutput aggregates the scanner's JSON report into per-severity
// counts. Findings without a severity count as UNKNOWN.
func parseScanOutput(ref string, out []byte) (*pipeline.VulnerabilitySummary, error) {
	var report scanReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStepFailed,
			fmt.Sprintf("failed to parse scan report for %q", ref), err)
	}

	summary := &pipeline.VulnerabilitySummary{
		Image:      ref,
		Severities: make(map[string]int),
	}
	if report.ArtifactName != "" {
		summary.Image = report.ArtifactName
	}

	for _, result := range report.Results {
		for _, vuln := range result.Vulnerabilities {
			severity := vuln.Severity
			if severity == "" {
				severity = "UNKNOWN"
			}
			summary.Severities[severity]++
			summary.Total++
		}
	}
	return summary, nil
}
