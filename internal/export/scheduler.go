package export

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler returns a stopped cron that exports the current day's report
// into dir on every tick of spec. Days are taken in loc.
func NewScheduler(svc *Service, spec, dir string, loc *time.Location) (*cron.Cron, error) {
	sched := cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := sched.AddFunc(spec, func() {
		day := time.Now().In(loc)

		report, err := svc.Export(context.Background(), day, dir)
		if err != nil {
			zap.S().Errorw("scheduled export failed", "day", day.Format(time.DateOnly), "error", err)
			return
		}

		zap.S().Infow("daily report exported",
			"day", day.Format(time.DateOnly),
			"sales", report.Balance.SalesTotal.StringFixed(2),
			"expenses", report.Balance.ExpensesTotal.StringFixed(2),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling export %q: %w", spec, err)
	}

	return sched, nil
}
