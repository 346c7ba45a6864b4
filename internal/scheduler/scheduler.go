// Package scheduler runs the in-process daily accrual job.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"investclub/internal/logger"
	"investclub/internal/services"
)

// StartDailyAccrual schedules one accrual run per day at the given UTC hour.
// It returns the scheduler so the caller can shut it down. The accrual engine
// itself is idempotent per day, so an overlapping manual trigger is harmless.
func StartDailyAccrual(accrualService services.AccrualServicer, hourUTC int) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hourUTC), 0, 0))),
		gocron.NewTask(func() {
			result, err := accrualService.RunDailyAccrual()
			if err != nil {
				logger.Get().Errorw("scheduled accrual run failed", "error", err.Error())
				return
			}
			logger.Get().Infow("scheduled accrual run finished",
				"users_credited", result.TotalUsersCredited,
				"credit_events", result.TotalCreditEvents,
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	logger.Get().Infof("Daily accrual scheduled at %02d:00 UTC", hourUTC)
	return sched, nil
}
