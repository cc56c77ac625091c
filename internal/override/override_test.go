package override

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMutatesExistingKeys(t *testing.T) {
	base := map[string]any{
		"name":   "Heater",
		"active": true,
		"nested": map[string]any{
			"shutdownSetting": float64(0),
			"untouched":       "keep",
		},
	}
	patch := map[string]any{
		"active": false,
		"nested": map[string]any{
			"shutdownSetting": float64(5),
		},
	}

	out, err := Apply(base, patch)
	require.NoError(t, err)

	assert.Equal(t, false, out["active"])
	assert.Equal(t, float64(5), out["nested"].(map[string]any)["shutdownSetting"])
	assert.Equal(t, "keep", out["nested"].(map[string]any)["untouched"])

	assert.Equal(t, true, base["active"], "target must not be mutated")
}

func TestApplyIgnoresUnknownKey(t *testing.T) {
	base := map[string]any{"active": true}
	out, err := Apply(base, map[string]any{"doesNotExist": 1})
	require.NoError(t, err)
	_, present := out["doesNotExist"]
	assert.False(t, present)
}

func TestApplyRejectsBannedKey(t *testing.T) {
	base := map[string]any{"name": "Heater"}
	_, err := Apply(base, map[string]any{"name": "Other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestApplyRejectsBannedKeyNested(t *testing.T) {
	base := map[string]any{"variables": map[string]any{"Heat": map[string]any{"description": "x"}}}
	_, err := Apply(base, map[string]any{"variables": map[string]any{"Heat": map[string]any{"description": "y"}}})
	require.Error(t, err)
}

func TestApplyAuditedRecordsChangedPaths(t *testing.T) {
	base := map[string]any{
		"active": true,
		"nested": map[string]any{
			"shutdownSetting": float64(0),
			"untouched":       "keep",
		},
		"missing": "ignored below",
	}
	patch := map[string]any{
		"active": false,
		"nested": map[string]any{
			"shutdownSetting": float64(5),
		},
		"doesNotExist": 1,
	}

	out, record, err := ApplyAudited(base, patch)
	require.NoError(t, err)

	assert.Equal(t, false, out["active"])
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.WithinDuration(t, time.Now(), record.AppliedAt, time.Minute)
	assert.ElementsMatch(t, []string{"active", "nested.shutdownSetting"}, record.ChangedPaths)
}

func TestApplyAuditedRejectsBannedKey(t *testing.T) {
	base := map[string]any{"name": "Heater"}
	_, _, err := ApplyAudited(base, map[string]any{"name": "Other"})
	require.Error(t, err)
}
