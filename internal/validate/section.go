package validate

import (
	"fmt"
	"sort"

	"github.com/kilncore/procctl/internal/schema"
	"github.com/kilncore/procctl/internal/typeconv"
)

// section validates one record (machine, variable, measurer, effector,
// process, or stage) against its SectionRules, mirroring configValidator.py's
// validateSection: unknown keyword, wrong type, bad enum value, cross-field
// requirement additions, shape predicates, then missing-required-keyword.
//
// sectionKey is the record's key within its parent collection ("" when the
// record isn't collection-keyed, e.g. the machine or process themselves);
// when non-empty it must equal data["name"]. label is prepended to the
// record's name in error messages ("Effector", "Variable", ... or "" for
// top-level records).
func section(sectionKey string, data map[string]any, rules schema.SectionRules, prefix, label string) error {
	rawName, ok := data["name"]
	if !ok {
		return fmt.Errorf("%s%s: lacks name keyword", prefix, sectionKey)
	}
	name, ok := rawName.(string)
	if !ok {
		return fmt.Errorf("%s%s: name is not a string", prefix, sectionKey)
	}
	if sectionKey != "" && sectionKey != name {
		return fmt.Errorf("%s%s: name does not match collection key", prefix, sectionKey)
	}

	message := prefix
	if label != "" {
		message += label + " "
	}
	message += name + ": "

	required := append([]string{}, rules.Required...)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, keyword := range keys {
		value := data[keyword]
		if !rules.Allowed(keyword) {
			return fmt.Errorf("%sInvalid keyword: %s", message, keyword)
		}
		if expected, ok := schema.TypeTable[keyword]; ok {
			if err := checkType(keyword, value, expected); err != nil {
				return fmt.Errorf("%s%s", message, err.Error())
			}
		}
		if allowed, ok := schema.EnumTable[keyword]; ok {
			strValue, _ := value.(string)
			if !schema.EnumContains(allowed, strValue) {
				return fmt.Errorf("%sInvalid value for keyword: %s", message, keyword)
			}
		}
		if byValue, ok := schema.CrossFieldTable[keyword]; ok {
			strValue, _ := value.(string)
			if extra, ok := byValue[strValue]; ok {
				required = append(required, extra...)
			}
		}
		if predicate, ok := schema.ContextFreePredicates[keyword]; ok {
			if problem := predicate(value); problem != "" {
				return fmt.Errorf("%sValidation function failed for %s: %s", message, keyword, problem)
			}
		}
	}

	for _, keyword := range required {
		if _, present := data[keyword]; !present {
			return fmt.Errorf("%sMissing required keyword: %s", message, keyword)
		}
	}
	return nil
}

func checkType(keyword string, value any, expected schema.Kind) error {
	actual := typeconv.KindName(value)
	ok := false
	switch expected {
	case schema.KindInt:
		ok = actual == "int"
	case schema.KindString:
		ok = actual == "string"
	case schema.KindBool:
		ok = actual == "bool"
	case schema.KindList:
		ok = actual == "list"
	case schema.KindMap:
		ok = actual == "mapping"
	}
	if ok {
		return nil
	}
	return fmt.Errorf("Invalid type for keyword: %s. Expected: %s Received: %s", keyword, expected, actual)
}
