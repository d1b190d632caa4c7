package audit

import (
	"path"
	"sort"
	"strings"

	"github.com/iksnae/agent-audit/internal"
)

// Path heuristics for blast radius signals.
var (
	apiMarkers    = []string{"/api/", "/apis/", "openapi", ".proto"}
	schemaMarkers = []string{"/migrations/", "/schema/", "schema.sql"}
	depManifests  = map[string]bool{
		"package.json":      true,
		"package-lock.json": true,
		"go.mod":            true,
		"go.sum":            true,
		"requirements.txt":  true,
		"cargo.toml":        true,
		"pom.xml":           true,
		"gemfile":           true,
	}
)

// deriveImpacts aggregates the touched surface per intent plus one
// session-wide impact (empty intent id), classifying blast radius from
// path signals and file counts.
func deriveImpacts(segments []*intentSegment) []ImpactArtifact {
	var impacts []ImpactArtifact
	sessionFiles := make(map[string]bool)
	sessionModules := make(map[string]bool)

	for _, segment := range segments {
		files := make(map[string]bool)
		modules := make(map[string]bool)
		for _, event := range segment.events {
			collectTouched(event, files, modules)
		}
		if len(files) == 0 && len(modules) == 0 {
			continue
		}
		for f := range files {
			sessionFiles[f] = true
		}
		for m := range modules {
			sessionModules[m] = true
		}
		impacts = append(impacts, buildImpact(segment.id, files, modules))
	}

	if len(sessionFiles) > 0 || len(sessionModules) > 0 {
		impacts = append(impacts, buildImpact("", sessionFiles, sessionModules))
	}
	return impacts
}

func collectTouched(event *internal.CanonicalEvent, files, modules map[string]bool) {
	if p, ok := event.Payload.(*internal.FileOpPayload); ok {
		if p.Path != "" {
			files[p.Path] = true
			if module := moduleOf(p.Path); module != "" {
				modules[module] = true
			}
		}
		if p.NewPath != "" {
			files[p.NewPath] = true
		}
	}
	if !event.Scope.IsZero() {
		if event.Scope.File != "" {
			files[event.Scope.File] = true
		}
		if event.Scope.Module != "" {
			modules[event.Scope.Module] = true
		}
	}
}

// moduleOf maps a file path onto its top-level directory.
func moduleOf(filePath string) string {
	clean := strings.TrimPrefix(path.Clean(filePath), "./")
	if idx := strings.IndexByte(clean, '/'); idx > 0 {
		return clean[:idx]
	}
	return ""
}

func buildImpact(intentID string, files, modules map[string]bool) ImpactArtifact {
	impact := ImpactArtifact{
		IntentID: intentID,
		Files:    sortedKeys(files),
		Modules:  sortedKeys(modules),
	}
	impact.Signals = pathSignals(impact.Files)
	impact.BlastRadius = classifyBlastRadius(len(impact.Files), impact.Signals)
	return impact
}

// pathSignals reports which risk markers the touched paths hit.
func pathSignals(files []string) []string {
	signals := make(map[string]bool)
	for _, file := range files {
		lower := strings.ToLower(file)
		base := path.Base(lower)
		for _, marker := range apiMarkers {
			if strings.Contains(lower, marker) {
				signals["public_api"] = true
			}
		}
		for _, marker := range schemaMarkers {
			if strings.Contains(lower, marker) {
				signals["schema"] = true
			}
		}
		if depManifests[base] {
			signals["dependency_manifest"] = true
		}
	}
	return sortedKeys(signals)
}

// classifyBlastRadius: large on public-API or schema signals or >=10
// files; medium on a dependency manifest change or >=4 files; small
// otherwise.
func classifyBlastRadius(fileCount int, signals []string) BlastRadius {
	hasSignal := func(name string) bool {
		for _, s := range signals {
			if s == name {
				return true
			}
		}
		return false
	}

	if hasSignal("public_api") || hasSignal("schema") || fileCount >= 10 {
		return BlastLarge
	}
	if hasSignal("dependency_manifest") || fileCount >= 4 {
		return BlastMedium
	}
	return BlastSmall
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
