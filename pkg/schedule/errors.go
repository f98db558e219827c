package schedule

import "errors"

var (
	ErrJobAlreadyRegistered = errors.New("schedule.errors.job_already_registered")
	ErrNoJobsRegistered     = errors.New("schedule.errors.no_jobs_registered")
	ErrInvalidJob           = errors.New("schedule.errors.invalid_job")
)
