package checker

// Latest returns the index of the most recent entry, or -1 for an empty
// history. Entries are compared by request time. An entry without a
// parsable time only wins when no entry has one, and ties keep the lower
// index, so a newest-first history yields 0.
func Latest(logs []LogEntry) int {
	if len(logs) == 0 {
		return -1
	}

	best := 0
	bestAt, bestOK := logs[0].RequestedAt()

	for i := 1; i < len(logs); i++ {
		at, ok := logs[i].RequestedAt()
		if !ok {
			continue
		}
		if !bestOK || at.After(bestAt) {
			best, bestAt, bestOK = i, at, true
		}
	}

	return best
}

// DeriveStatus computes the display status of a checker. The latest log
// entry wins; without history the caller-supplied initial status is used,
// and StatusInitial when there is none.
func DeriveStatus(logs []LogEntry, initial *Status) Status {
	if i := Latest(logs); i >= 0 {
		return logs[i].Status
	}
	if initial != nil {
		return *initial
	}
	return StatusInitial
}
