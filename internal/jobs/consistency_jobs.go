package jobs

import (
	"context"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
)

// ReconcileBookings compares availability flags with the booking table and logs
// every disagreement. It never writes.
func (jr *JobRunner) ReconcileBookings() {
	jr.runWithRecovery("ReconcileBookings", func(ctx context.Context) error {
		_, err := jr.reconcile(ctx)
		return err
	})
}

func (jr *JobRunner) reconcile(ctx context.Context) (*domain.ConsistencyReport, error) {
	report, err := jr.lifecycle.DetectInconsistencies(ctx, jr.config.Reservation.StrandedGrace())
	if err != nil {
		return nil, err
	}

	for _, issue := range report.Drifted {
		logger.Inconsistency(ctx, string(issue.Kind), nil,
			"equipment_id", issue.EquipmentID, "booking_id", issue.BookingID, "since", issue.Since)
	}
	for _, issue := range report.Stranded {
		logger.WarnContext(ctx, "Stranded equipment awaiting release",
			"equipment_id", issue.EquipmentID, "owner_id", issue.OwnerID, "since", issue.Since)
	}

	logger.InfoContext(ctx, "Reconciliation finished",
		"drifted", len(report.Drifted), "stranded", len(report.Stranded))
	return report, nil
}

// ReleaseStrandedReservations makes items available again when a reservation
// claimed them but never recorded a booking.
func (jr *JobRunner) ReleaseStrandedReservations() {
	jr.runWithRecovery("ReleaseStrandedReservations", func(ctx context.Context) error {
		_, err := jr.releaseStranded(ctx)
		return err
	})
}

func (jr *JobRunner) releaseStranded(ctx context.Context) (int, error) {
	released, err := jr.lifecycle.ReleaseStranded(ctx, jr.config.Reservation.StrandedGrace())
	if released > 0 {
		logger.InfoContext(ctx, "Released stranded equipment", "count", released)
	}
	return released, err
}
