package handler

import (
	"net/http"
	"time"

	"checkout-gateway/internal/adapter/http/dto"
	"checkout-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthCheck answers the health endpoint. It always returns 200: an
// unreachable store is reported as "disconnected" in the body instead of
// failing the probe, so a degraded service is still observable. start is the
// process start time; uptime is measured from it.
func HealthCheck(reportingSvc ports.ReportingService, log zerolog.Logger, start time.Time, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := dto.HealthResponse{
			Status: "ok",
			Uptime: time.Since(start).Round(time.Second).String(),
			Store:  "connected",
		}

		for _, checker := range checkers {
			dep := dto.DepStatus{Name: checker.Name(), Status: "healthy"}
			if err := checker.Ping(c.Request.Context()); err != nil {
				dep.Status = "unhealthy"
				dep.Error = err.Error()
				resp.Status = "degraded"
				if checker.Name() == "postgresql" {
					resp.Store = "disconnected"
				}
			}
			resp.Dependencies = append(resp.Dependencies, dep)
		}

		if resp.Store == "connected" {
			counts, err := reportingSvc.Counts(c.Request.Context())
			if err != nil {
				log.Warn().Err(err).Msg("health aggregate counts unavailable")
				resp.Status = "degraded"
				resp.Store = "disconnected"
			} else {
				resp.Transactions = &dto.HealthCounts{
					Total:     counts.Total,
					Pending:   counts.Pending,
					Completed: counts.Completed,
					Failed:    counts.Failed,
					Expired:   counts.Expired,
				}
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}
