package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionRulesAllowed(t *testing.T) {
	assert.True(t, EffectorRules.Allowed("name"))
	assert.True(t, EffectorRules.Allowed("controlPIDConsts"))
	assert.False(t, EffectorRules.Allowed("safeRange"))
}

func TestTypeTableCoversAllRuleKeywords(t *testing.T) {
	sections := []SectionRules{MachineRules, VariableRules, MeasurerRules, EffectorRules, ProcessRules, StageRules}
	for _, section := range sections {
		for _, keyword := range append(append([]string{}, section.Required...), section.Optional...) {
			_, ok := TypeTable[keyword]
			assert.True(t, ok, "keyword %q missing from TypeTable", keyword)
		}
	}
}

func TestEnumContains(t *testing.T) {
	assert.True(t, EnumContains(EnumTable["sensorMixing"], "max"))
	assert.False(t, EnumContains(EnumTable["sensorMixing"], "sum"))
}

func TestCrossFieldTableControlTypes(t *testing.T) {
	for _, ct := range EnumTable["controlType"] {
		if ct == "static" {
			continue
		}
		required, ok := CrossFieldTable["controlType"][ct]
		assert.True(t, ok, "controlType %q has no cross-field requirements entry", ct)
		assert.NotEmpty(t, required)
	}
}

func TestBannedOverrideKeys(t *testing.T) {
	assert.True(t, BannedOverrideKeys["name"])
	assert.True(t, BannedOverrideKeys["description"])
	assert.False(t, BannedOverrideKeys["active"])
}
