// Copyright 2025 ADEGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
)

// Exchange carries a report and the accumulated stage payloads through one
// pipeline run. Stages read upstream fields and write only their own.
type Exchange struct {
	Report   core.Report
	ReportID core.ID

	Entities    []core.Entity
	Truncated   bool
	Severity    *core.SeverityResult
	Cluster     *core.ClusterAssignment
	Explanation *core.Explanation
}

// Stage is one unit of pipeline work. Run must honor ctx cancellation and
// return a terminal outcome; it must not panic past the stage boundary.
type Stage interface {
	Name() string
	Timeout() time.Duration
	Run(ctx context.Context, ex *Exchange) core.StageOutcome
}

// execute runs one stage with its deadline applied and panics contained.
// A panic becomes a failed outcome with the internal error kind; sibling
// stages never observe it.
func execute(ctx context.Context, stage Stage, ex *Exchange, logger *slog.Logger) (outcome core.StageOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", "stage", stage.Name(), "panic", r)
			outcome = core.StageOutcome{
				StageName: stage.Name(),
				Status:    core.StageFailed,
				ErrorKind: core.ErrorKindInternal,
				Error:     fmt.Sprintf("%v: panic: %v", core.ErrInternal, r),
				Elapsed:   time.Since(start),
			}
		}
	}()

	if timeout := stage.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcome = stage.Run(ctx, ex)
	outcome.StageName = stage.Name()
	outcome.Elapsed = time.Since(start)
	return outcome
}

// degradedOutcome classifies a stage error into the skip / timeout /
// internal-failure taxonomy.
func degradedOutcome(stageName string, err error) core.StageOutcome {
	outcome := core.StageOutcome{
		StageName: stageName,
		Error:     err.Error(),
	}
	switch {
	case errors.Is(err, core.ErrCapabilityUnavailable):
		outcome.Status = core.StageSkipped
		outcome.ErrorKind = core.ErrorKindCapability
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, core.ErrInferenceTimeout):
		outcome.Status = core.StageTimedOut
		outcome.ErrorKind = core.ErrorKindTimeout
	default:
		outcome.Status = core.StageFailed
		outcome.ErrorKind = core.ErrorKindInternal
	}
	return outcome
}
