package schema

import (
	"fmt"

	"github.com/kilncore/procctl/internal/typeconv"
)

// Predicate checks a keyword's already-type-checked value for a constraint
// that a bare Kind cannot express (arity, ordering, shape). It returns a
// human-readable problem description, or "" when the value is acceptable.
type Predicate func(value any) string

// ContextFreePredicates maps a keyword to the extra shape check its value
// must pass, for checks that need no knowledge of sibling sections.
var ContextFreePredicates = map[string]Predicate{
	"safeRange":          checkRangePair,
	"shutdownRange":      checkRangePair,
	"controlPIDConsts":   checkPIDConsts,
	"controlLookupTable": checkLookupTable,
	"stages":             checkStages,
}

func checkRangePair(value any) string {
	list, ok := value.([]any)
	if !ok {
		return "must be a list"
	}
	if len(list) != 2 {
		return fmt.Sprintf("must contain exactly 2 values, got %d", len(list))
	}
	low, err := typeconv.ToInt(list[0])
	if err != nil {
		return "low bound must be an int"
	}
	high, err := typeconv.ToInt(list[1])
	if err != nil {
		return "high bound must be an int"
	}
	if low >= high {
		return fmt.Sprintf("low bound %d must be less than high bound %d", low, high)
	}
	return ""
}

func checkPIDConsts(value any) string {
	list, ok := value.([]any)
	if !ok {
		return "must be a list"
	}
	if len(list) != 3 {
		return fmt.Sprintf("must contain exactly 3 values (P, I, D), got %d", len(list))
	}
	for i, v := range list {
		if !typeconv.IsWholeNumber(v) {
			return fmt.Sprintf("element %d must be an int", i)
		}
	}
	return ""
}

func checkLookupTable(value any) string {
	list, ok := value.([]any)
	if !ok {
		return "must be a list"
	}
	if len(list) == 0 {
		return "must contain at least one entry"
	}
	for i, entry := range list {
		pair, ok := entry.([]any)
		if !ok || len(pair) != 2 {
			return fmt.Sprintf("entry %d must be a [input, output] pair", i)
		}
		if !typeconv.IsWholeNumber(pair[0]) || !typeconv.IsWholeNumber(pair[1]) {
			return fmt.Sprintf("entry %d must contain two ints", i)
		}
	}
	return ""
}

// checkStages requires the stages map's keys to be the dense string-encoded
// integers "0".."N-1", matching the source format's zero-based stage indexing.
func checkStages(value any) string {
	stages, ok := value.(map[string]any)
	if !ok {
		return "must be a mapping"
	}
	if len(stages) == 0 {
		return "must contain at least one stage"
	}
	for i := 0; i < len(stages); i++ {
		key := fmt.Sprintf("%d", i)
		if _, present := stages[key]; !present {
			return fmt.Sprintf("missing stage index %q: stage keys must be dense, zero-based", key)
		}
	}
	return ""
}
