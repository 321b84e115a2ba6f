package intake

import (
	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// ruleTable indexes mapping rules by normalized type label and appends auto
// rules for labels it has not seen.
type ruleTable struct {
	rules []safety.MappingRule
	index map[string]int
}

func newRuleTable(rules []safety.MappingRule) *ruleTable {
	t := &ruleTable{
		rules: make([]safety.MappingRule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		key := normalize.Label(r.Type)
		if key == "" {
			continue
		}
		if _, ok := t.index[key]; ok {
			continue
		}
		r.Type = key
		t.index[key] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	return t
}

func (t *ruleTable) lookup(label string) (safety.MappingRule, bool) {
	i, ok := t.index[normalize.Label(label)]
	if !ok {
		return safety.MappingRule{}, false
	}
	return t.rules[i], true
}

func (t *ruleTable) learn(label string, flags safety.Flags) {
	key := normalize.Label(label)
	if key == "" {
		return
	}
	if _, ok := t.index[key]; ok {
		return
	}
	t.index[key] = len(t.rules)
	t.rules = append(t.rules, safety.MappingRule{Type: key, Flags: flags, Source: safety.RuleAuto})
}

// NormalizeRules canonicalizes rule labels and drops duplicates and blanks,
// keeping the first occurrence.
func NormalizeRules(rules []safety.MappingRule) []safety.MappingRule {
	return newRuleTable(rules).rules
}

// MergeRules overlays incoming rules on current by label. Incoming rules win
// and keep their source.
func MergeRules(current []safety.MappingRule, incoming []safety.MappingRule) []safety.MappingRule {
	t := newRuleTable(current)
	for _, r := range NormalizeRules(incoming) {
		if i, ok := t.index[r.Type]; ok {
			t.rules[i] = r
			continue
		}
		t.index[r.Type] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	return t.rules
}
