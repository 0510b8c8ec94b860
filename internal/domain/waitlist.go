package domain

// NextInLine selects the record to promote when a confirmed slot frees up:
// the earliest-arrived waitlisted record, skipping the vacating user. The
// input must already be in arrival order (ascending Seq), as produced by
// AttendanceTx.Waitlist. Returns nil when nobody is eligible.
func NextInLine(waitlist []*AttendanceRecord, vacatingUserID string) *AttendanceRecord {
	for _, rec := range waitlist {
		if rec.UserID == vacatingUserID {
			continue
		}
		if rec.Status == StatusWaitlisted {
			return rec
		}
	}
	return nil
}
