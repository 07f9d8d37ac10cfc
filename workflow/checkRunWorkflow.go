package workflow

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veritaxlabs/pintae_backend/checks"
	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/models"
)

// RunRequest carries one full validation request: caller-coerced rows plus
// the knobs selecting what runs. The workflow owns nothing across calls.
type RunRequest struct {
	Direction     models.Direction
	Buyers        []models.Buyer
	Headers       []models.InvoiceHeader
	Lines         []models.InvoiceLine
	Profile       *models.OrganizationProfile
	CustomConfigs []checks.CustomCheckConfig
	CorrelationId string
	Parallel      bool
}

// RunReport is everything downstream consumers need from one run: the
// aggregate, per-check results, flattened and severity-keyed exceptions, and
// per-entity scores.
type RunReport struct {
	Run          *models.CheckRun                       `json:"run"`
	Results      []models.CheckResult                   `json:"results"`
	Exceptions   []models.Exception                     `json:"exceptions"`
	BySeverity   map[models.Severity][]models.Exception `json:"by_severity"`
	EntityScores []models.EntityScore                   `json:"entity_scores"`
}

// ExecuteCheckRun compiles custom checks, builds the context and evaluates
// everything. Custom configuration problems fail here before any data is
// touched; data problems come back as exceptions inside the report.
func ExecuteCheckRun(req RunRequest) (*RunReport, error) {
	logger := config.GetLogger()
	startedAt := time.Now().UTC()

	direction := req.Direction
	if direction == "" {
		direction = models.DefaultDirection
	}

	compiled := make([]*checks.CompiledCheck, 0, len(req.CustomConfigs))
	for _, cfg := range req.CustomConfigs {
		cc, err := checks.CompileCustomCheck(cfg)
		if err != nil {
			config.LogError(logger, "workflow", "ExecuteCheckRun", "compiling custom check", cfg.Id, err)
			return nil, err
		}
		compiled = append(compiled, cc)
	}

	dc := models.NewDataContext(req.Buyers, req.Headers, req.Lines)
	results, err := checks.RunChecks(dc, checks.RunOptions{
		Direction: direction,
		Profile:   req.Profile,
		Custom:    compiled,
		Parallel:  req.Parallel,
	})
	if err != nil {
		config.LogError(logger, "workflow", "ExecuteCheckRun", "running checks", string(direction), err)
		return nil, err
	}

	exceptions := models.FlattenExceptions(results)
	run := models.NewCheckRun(direction, len(dc.Headers), exceptions, startedAt)
	run.CorrelationId = req.CorrelationId

	logger.WithFields(logrus.Fields{
		"run_id":     run.Id,
		"direction":  direction,
		"invoices":   run.TotalInvoices,
		"exceptions": run.TotalExceptions,
		"score":      run.Score,
		"took_ms":    time.Since(startedAt).Milliseconds(),
	}).Info("check run completed")

	return &RunReport{
		Run:          run,
		Results:      results,
		Exceptions:   exceptions,
		BySeverity:   models.GroupExceptionsBySeverity(exceptions),
		EntityScores: models.BuildEntityScores(dc, exceptions),
	}, nil
}
