package listener

// Window is an inclusive block range to scan.
type Window struct {
	From uint64
	To   uint64
}

// NextWindow computes the next confirmed scan window. The window never
// reaches above latest - confirmations and never spans more than maxBatch
// blocks, so catch-up after downtime stays bounded. The second return is
// false when no new confirmed range exists yet.
func NextWindow(lastProcessed, latest, confirmations, maxBatch uint64) (Window, bool) {
	if latest <= confirmations {
		return Window{}, false
	}
	safe := latest - confirmations
	if safe <= lastProcessed {
		return Window{}, false
	}

	to := safe
	if maxBatch > 0 && to > lastProcessed+maxBatch {
		to = lastProcessed + maxBatch
	}
	return Window{From: lastProcessed + 1, To: to}, true
}
