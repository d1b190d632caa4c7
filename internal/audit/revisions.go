package audit

import (
	"fmt"
	"sort"

	"github.com/iksnae/agent-audit/internal"
)

// fileOpRecord is one file mutation with its position in time.
type fileOpRecord struct {
	op    string
	lines int
	tsMS  int64
}

// detectRevisions finds risky editing patterns across all file
// operations plus superseded intents. Output order is deterministic:
// per-file findings sorted by path, then intent findings in intent
// order.
func detectRevisions(segments []*intentSegment, cfg *internal.Config) []RevisionArtifact {
	byPath := make(map[string][]fileOpRecord)
	for _, segment := range segments {
		for _, event := range segment.events {
			p, ok := event.Payload.(*internal.FileOpPayload)
			if !ok || p.Path == "" {
				continue
			}
			byPath[p.Path] = append(byPath[p.Path], fileOpRecord{
				op:    p.Op,
				lines: p.LinesChanged,
				tsMS:  event.TS.UnixMilli(),
			})
		}
	}

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var revisions []RevisionArtifact
	for _, path := range paths {
		revisions = append(revisions, detectFileRevisions(path, byPath[path], cfg)...)
	}

	for i, segment := range segments {
		if i == len(segments)-1 {
			continue
		}
		if hasPassingVerification(segment) {
			continue
		}
		// The synthetic pre-intent segment usually holds only the
		// session boundary; without file work it was never real work
		// to supersede.
		if segment.synthetic && !hasFileWork(segment) {
			continue
		}
		revisions = append(revisions, RevisionArtifact{
			Type:     RevisionIntentSuperseded,
			IntentID: segment.id,
			Detail:   "intent superseded without a passing verification",
		})
	}

	return revisions
}

func detectFileRevisions(path string, ops []fileOpRecord, cfg *internal.Config) []RevisionArtifact {
	var revisions []RevisionArtifact

	edits := 0
	hasCreate := false
	hasDelete := false
	for _, op := range ops {
		switch op.op {
		case "edit":
			edits++
		case "create":
			hasCreate = true
		case "delete":
			hasDelete = true
		}
	}

	if edits > cfg.RepeatEditThreshold {
		revisions = append(revisions, RevisionArtifact{
			Type:   RevisionRepeatFileEdits,
			Path:   path,
			Count:  edits,
			Detail: fmt.Sprintf("%d edits exceed threshold %d", edits, cfg.RepeatEditThreshold),
		})
	}

	if hasCreate && hasDelete {
		revisions = append(revisions, RevisionArtifact{
			Type:   RevisionCreateThenDelete,
			Path:   path,
			Detail: "file was created and later deleted in the same session",
		})
	}

	// A large edit shortly after a previous change to the same file.
	for i := 1; i < len(ops); i++ {
		if ops[i].op != "edit" || ops[i].lines <= cfg.LargeChangeLines {
			continue
		}
		if ops[i].tsMS-ops[i-1].tsMS <= cfg.RecentChangeWindowMS {
			revisions = append(revisions, RevisionArtifact{
				Type:  RevisionLargeAfterRecent,
				Path:  path,
				Count: ops[i].lines,
				Detail: fmt.Sprintf("%d-line change within %dms of the previous change",
					ops[i].lines, cfg.RecentChangeWindowMS),
			})
			break
		}
	}

	return revisions
}

func hasPassingVerification(segment *intentSegment) bool {
	for _, event := range segment.events {
		if p, ok := event.Payload.(*internal.VerificationPayload); ok && p.Result == "pass" {
			return true
		}
	}
	return false
}

func hasFileWork(segment *intentSegment) bool {
	for _, event := range segment.events {
		if event.Kind == internal.KindFileOp {
			return true
		}
	}
	return false
}
