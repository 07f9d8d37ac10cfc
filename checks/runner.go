package checks

import (
	"fmt"
	"sync"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/models"
)

// RunOptions selects what one execution evaluates. Custom checks must be
// compiled (and therefore validated) before they get here.
type RunOptions struct {
	Direction models.Direction
	Profile   *models.OrganizationProfile
	Custom    []*CompiledCheck
	// Parallel forces goroutine fan-out; PARALLEL_CHECK_EXECUTION enables
	// it globally. Results keep the same order either way.
	Parallel bool
}

// RunChecks evaluates built-in checks, the UC1 pack, the organization
// profile check and any custom checks over one context. Checks are pure over
// the immutable context, so parallel dispatch only changes latency, never
// content or order of the result slice.
func RunChecks(dc *models.DataContext, opts RunOptions) ([]models.CheckResult, error) {
	direction := opts.Direction
	if direction == "" {
		direction = models.DefaultDirection
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("invalid direction %q", direction)
	}
	routed := GetRulesetForDirection(direction)

	pack, err := UC1Pack()
	if err != nil {
		return nil, err
	}

	var tasks []func() models.CheckResult
	for _, c := range BuiltinChecks() {
		tasks = append(tasks, func() models.CheckResult { return c.Run(dc, routed) })
	}
	for _, c := range pack.Checks() {
		tasks = append(tasks, func() models.CheckResult { return c.Run(dc, routed) })
	}
	if opts.Profile != nil {
		tasks = append(tasks, func() models.CheckResult {
			exceptions := BuildOrganizationProfileExceptions(opts.Profile, routed, dc)
			if exceptions == nil {
				exceptions = []models.Exception{}
			}
			return models.CheckResult{CheckId: OrganizationProfileCheckId, Exceptions: exceptions}
		})
	}
	for _, cc := range opts.Custom {
		tasks = append(tasks, func() models.CheckResult { return cc.Run(dc, routed) })
	}

	results := make([]models.CheckResult, len(tasks))
	if opts.Parallel || config.ParallelCheckExecution() {
		var wg sync.WaitGroup
		for i, task := range tasks {
			wg.Add(1)
			go func(slot int, run func() models.CheckResult) {
				defer wg.Done()
				results[slot] = run()
			}(i, task)
		}
		wg.Wait()
	} else {
		for i, task := range tasks {
			results[i] = task()
		}
	}
	return results, nil
}
