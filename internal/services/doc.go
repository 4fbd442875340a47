// Package services orchestrates dashboard loads between the row sources and
// the HTTP and CLI front ends.
//
// A load runs fetch, clean, period filter, statistics, chart series,
// insights and display table in that order:
//
//	svc := services.NewDashboardService(source, logger,
//	    services.WithClock(clock),
//	    services.WithMetrics(metrics),
//	)
//	report, err := svc.Load(ctx, signals.PeriodWeek)
//
// Loads that overlap share a single fetch. Failures are returned as
// *errors.AppError values whose category (CONFIG, NETWORK, PARSING,
// INTERNAL) drives the HTTP status. A sheet without data is not a failure:
// the report is marked Empty and carries a warning.
package services
