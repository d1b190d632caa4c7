package internal

// WriteMode names how a batch was persisted.
type WriteMode string

const (
	WriteModeAppend      WriteMode = "append"
	WriteModeFullRewrite WriteMode = "full_rewrite"
)

// WriteResult summarizes one persistence call.
type WriteResult struct {
	Mode  WriteMode
	Total int // events in the log after the write
}

// MergeWriter persists resolved, deduplicated events. A batch landing in
// an empty session is appended with a fresh seq counter; a batch merging
// into a non-empty session forces a full rewrite sorted by (ts, seq)
// with dense reassigned seqs and regenerated ids.
type MergeWriter struct {
	cfg *Config
}

// NewMergeWriter creates a new MergeWriter
func NewMergeWriter(cfg *Config) *MergeWriter {
	return &MergeWriter{cfg: cfg}
}

// Write persists the accepted events for a session. existing must be the
// full current log contents in seq order; accepted carries no seq yet.
func (w *MergeWriter) Write(sessionID string, existing, accepted []*CanonicalEvent) (*WriteResult, error) {
	path := SessionLogPath(w.cfg.SessionsDir, sessionID)

	if len(accepted) == 0 {
		return &WriteResult{Mode: WriteModeAppend, Total: len(existing)}, nil
	}

	maxSeq := 0
	for _, event := range existing {
		if event.Seq > maxSeq {
			maxSeq = event.Seq
		}
	}
	for i, event := range accepted {
		event.SessionID = sessionID
		event.Seq = maxSeq + i + 1
		event.ID = NewEventID(event.Seq)
	}

	if len(existing) == 0 {
		if err := AppendEvents(path, accepted); err != nil {
			return nil, err
		}
		return &WriteResult{Mode: WriteModeAppend, Total: len(accepted)}, nil
	}

	combined := make([]*CanonicalEvent, 0, len(existing)+len(accepted))
	combined = append(combined, existing...)
	combined = append(combined, accepted...)
	SortEventsCanonical(combined)
	for i, event := range combined {
		event.Seq = i + 1
		event.ID = NewEventID(event.Seq)
	}

	if err := RewriteSessionLog(path, combined); err != nil {
		return nil, err
	}
	return &WriteResult{Mode: WriteModeFullRewrite, Total: len(combined)}, nil
}
