package config

import (
	"fmt"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kilncore/procctl/internal/typeconv"
)

func newDecoder(out any) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
}

// DecodeMachine turns a validated raw config tree into a typed Machine.
func DecodeMachine(raw map[string]any) (Machine, error) {
	var m Machine
	dec, err := newDecoder(&m)
	if err != nil {
		return m, fmt.Errorf("building machine decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return m, fmt.Errorf("decoding machine: %w", err)
	}

	effectorsRaw, _ := raw["effectors"].(map[string]any)
	for key, effector := range m.Effectors {
		raw, ok := effectorsRaw[key].(map[string]any)
		if !ok {
			continue
		}
		if table, ok := raw["controlLookupTable"]; ok {
			entries, err := decodeLookupTable(table)
			if err != nil {
				return m, fmt.Errorf("effector %s: %w", key, err)
			}
			effector.ControlLookupTable = entries
			m.Effectors[key] = effector
		}
	}
	return m, nil
}

func decodeLookupTable(raw any) ([]LookupEntry, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("controlLookupTable: not a list")
	}
	entries := make([]LookupEntry, 0, len(list))
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("controlLookupTable entry %d: not a [key, output] pair", i)
		}
		key, err := typeconv.ToInt(pair[0])
		if err != nil {
			return nil, fmt.Errorf("controlLookupTable entry %d key: %w", i, err)
		}
		out, err := typeconv.ToInt(pair[1])
		if err != nil {
			return nil, fmt.Errorf("controlLookupTable entry %d output: %w", i, err)
		}
		entries = append(entries, LookupEntry{Key: key, Output: out})
	}
	return entries, nil
}

// DecodeProcess turns a validated raw config tree into a typed Process. The
// stages map (string-keyed "0".."N-1") becomes an ordered slice.
func DecodeProcess(raw map[string]any) (Process, error) {
	var p Process
	dec, err := newDecoder(&p)
	if err != nil {
		return p, fmt.Errorf("building process decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("decoding process: %w", err)
	}

	stagesRaw, _ := raw["stages"].(map[string]any)
	p.Stages = make([]Stage, len(stagesRaw))
	for key, stageRaw := range stagesRaw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(stagesRaw) {
			return p, fmt.Errorf("stages: invalid stage index %q", key)
		}
		stage, err := decodeStage(stageRaw)
		if err != nil {
			return p, fmt.Errorf("stage %s: %w", key, err)
		}
		p.Stages[idx] = stage
	}
	return p, nil
}

func decodeStage(raw any) (Stage, error) {
	var s Stage
	stageMap, ok := raw.(map[string]any)
	if !ok {
		return s, fmt.Errorf("not a mapping")
	}
	dec, err := newDecoder(&s)
	if err != nil {
		return s, fmt.Errorf("building stage decoder: %w", err)
	}
	if err := dec.Decode(stageMap); err != nil {
		return s, fmt.Errorf("decoding: %w", err)
	}
	if target, ok := stageMap["stageEndTarget"]; ok {
		entries, err := decodeStageEndTarget(target)
		if err != nil {
			return s, fmt.Errorf("stageEndTarget: %w", err)
		}
		s.StageEndTarget = entries
	}
	return s, nil
}

func decodeStageEndTarget(raw any) (map[string]StageEndTargetEntry, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not a mapping")
	}
	out := make(map[string]StageEndTargetEntry, len(m))
	for variable, value := range m {
		pair, ok := value.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("variable %s: not a [comparator, threshold] pair", variable)
		}
		comparator, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("variable %s: comparator not a string", variable)
		}
		threshold, err := typeconv.ToInt(pair[1])
		if err != nil {
			return nil, fmt.Errorf("variable %s: threshold: %w", variable, err)
		}
		out[variable] = StageEndTargetEntry{Comparator: comparator, Threshold: threshold}
	}
	return out, nil
}
