package service

import (
	"context"
	"sort"
	"time"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/models"
)

// healthCheckTimeout bounds every single dependency check.
const healthCheckTimeout = 2 * time.Second

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

type healthService struct {
	buildInfo models.AppBuildInfo
	checks    map[string]HealthCheck
}

// NewHealthService returns a HealthService reporting buildInfo and the
// result of every check. Nil checks are skipped.
func NewHealthService(buildInfo models.AppBuildInfo, checks map[string]HealthCheck) HealthService {
	filtered := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}

	return &healthService{
		buildInfo: buildInfo,
		checks:    filtered,
	}
}

// Check runs the checks one after another in name order.
func (s *healthService) Check(ctx context.Context) models.HealthReport {
	log := logger.FromContext(ctx)

	report := models.HealthReport{
		Status:  models.HealthOK,
		Version: s.buildInfo.BuildVersion(),
		Commit:  s.buildInfo.BuildCommit(),
		Checks:  make(map[string]string, len(s.checks)),
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := s.checks[name](checkCtx)
		cancel()

		if err != nil {
			log.Err(err).Str("dependency", name).Msg("health check failed")
			report.Status = models.HealthDegraded
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = models.HealthOK
	}

	return report
}
