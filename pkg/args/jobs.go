package args

import (
	"github.com/quarrytools/quarry/pkg/config"
	"github.com/quarrytools/quarry/qapi"
)

// buildJobsKey is where the accepted parallelism level lands in
// configuration, and where the computed default reads from.
const buildJobsKey = "config:build_jobs"

// fallbackBuildJobs applies when configuration carries no build_jobs value.
const fallbackBuildJobs = 16

// JobCountAction validates an explicit job-count value and records it.
// Values below one are rejected; values above the machine's available
// parallelism are silently clamped to it, since asking for more parallelism
// than exists degrades gracefully rather than failing. The accepted value is
// written into the command-line configuration scope, so every subsystem
// reading configuration afterwards observes the user's explicit choice at
// the highest-priority layer.
type JobCountAction struct{}

func (JobCountAction) OnValueConsumed(ac *ActionContext, raw interface{}) error {
	jobs := raw.(int)
	if jobs < 1 {
		return qapi.ErrorInvalidJobCount(ac.Option, jobs)
	}
	if limit := ac.Ext.Parallelism(); jobs > limit {
		jobs = limit
	}
	if err := ac.Ext.Config.Set(buildJobsKey, jobs, config.ScopeCommandLine); err != nil {
		return qapi.ErrorConfig("recording accepted job count", err)
	}
	ac.Namespace.Set(ac.Builder.destination(), jobs)
	return nil
}

// DefaultJobs computes the job count used when no explicit value was given:
// the configured build_jobs value capped at the machine's available
// parallelism. It is computed on every call, never stored, so configuration
// and hardware facts are read when they are current; there is nothing to
// overwrite.
func DefaultJobs(ext *Externals) int {
	jobs := ext.Config.GetInt(buildJobsKey, fallbackBuildJobs)
	if limit := ext.Parallelism(); jobs > limit {
		jobs = limit
	}
	return jobs
}
