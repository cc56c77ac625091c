// Package override implements the deep-merge patch engine that composes a
// process- or stage-level override map onto a base machine config. It
// operates purely on decoded map[string]any trees, the same representation
// the schema validator checks, so overrides can be applied and re-validated
// before ever touching a typed config.Machine.
package override

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilncore/procctl/internal/schema"
)

// Record is an audit trail entry for one applied override patch: enough to
// answer "what changed, and when" without re-diffing the before/after trees.
type Record struct {
	ID           uuid.UUID
	AppliedAt    time.Time
	ChangedPaths []string
}

// Apply deep-merges patch onto a deep copy of target and returns the copy.
// target is left untouched. A key present in patch but absent from the
// corresponding level of target is silently dropped — overrides only ever
// mutate keys that already exist. A banned key anywhere in patch is an error.
func Apply(target map[string]any, patch map[string]any) (map[string]any, error) {
	cloned := deepCopyMap(target)
	if _, err := applyInto(cloned, patch, ""); err != nil {
		return nil, err
	}
	return cloned, nil
}

// ApplyAudited behaves like Apply but also returns a Record identifying this
// application (a fresh random ID) and the dotted key paths it actually
// changed, for callers that want to log or expose an override audit trail.
func ApplyAudited(target map[string]any, patch map[string]any) (map[string]any, Record, error) {
	cloned := deepCopyMap(target)
	changed, err := applyInto(cloned, patch, "")
	if err != nil {
		return nil, Record{}, err
	}
	sort.Strings(changed)
	return cloned, Record{ID: uuid.New(), AppliedAt: time.Now(), ChangedPaths: changed}, nil
}

func applyInto(target map[string]any, patch map[string]any, prefix string) ([]string, error) {
	var changed []string
	for key, value := range patch {
		if schema.BannedOverrideKeys[key] {
			return nil, fmt.Errorf("invalid override keyword: %s", key)
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		existing, present := target[key]
		if !present {
			continue
		}
		patchMap, patchIsMap := value.(map[string]any)
		existingMap, existingIsMap := existing.(map[string]any)
		if patchIsMap && existingIsMap {
			nested, err := applyInto(existingMap, patchMap, path)
			if err != nil {
				return nil, err
			}
			changed = append(changed, nested...)
			continue
		}
		target[key] = value
		changed = append(changed, path)
	}
	return changed, nil
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, item := range val {
			cp[i] = deepCopyValue(item)
		}
		return cp
	default:
		return val
	}
}
