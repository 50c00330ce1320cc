package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sipoma/internal/jobs"
)

// JobRunner is the part of the scheduler the job endpoints need.
type JobRunner interface {
	RunNow(name string) error
	GetJobStatus() []jobs.JobStatus
}

type JobHandlers struct {
	runner JobRunner
}

func NewJobHandlers(runner JobRunner) *JobHandlers {
	return &JobHandlers{runner: runner}
}

// ListJobs returns the schedule of every background job
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.runner.GetJobStatus(),
	})
}

// RunJob triggers a background job immediately
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.runner.RunNow(name); err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown job: "+name)
		}
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
