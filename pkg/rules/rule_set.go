package rules

// RuleSet is an ordered collection of rules with unique keys.
type RuleSet struct {
	index map[string]int
	rules []*Rule
}

func NewRuleSet() *RuleSet {
	return &RuleSet{
		index: make(map[string]int),
		rules: make([]*Rule, 0),
	}
}

// Add appends the rule unless its key is already present. It reports whether
// the rule was added.
func (rs *RuleSet) Add(rule *Rule) bool {

	if _, ok := rs.index[rule.Key]; ok {
		return false
	}

	rs.index[rule.Key] = len(rs.rules)
	rs.rules = append(rs.rules, rule)

	return true
}

// Put stores the rule, replacing an existing rule with the same key at its
// original position.
func (rs *RuleSet) Put(rule *Rule) {

	if i, ok := rs.index[rule.Key]; ok {
		rs.rules[i] = rule
		return
	}

	rs.index[rule.Key] = len(rs.rules)
	rs.rules = append(rs.rules, rule)
}

func (rs *RuleSet) Get(key string) *Rule {

	if i, ok := rs.index[key]; ok {
		return rs.rules[i]
	}

	return nil
}

func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

func (rs *RuleSet) List() []*Rule {

	rules := make([]*Rule, len(rs.rules))
	copy(rules, rs.rules)

	return rules
}

// Merge returns the state a profile ends up in when the given rule lists are
// activated in order: later rules replace earlier ones with the same key.
func Merge(lists ...[]*Rule) *RuleSet {

	rs := NewRuleSet()
	for _, list := range lists {
		for _, rule := range list {
			rs.Put(rule)
		}
	}

	return rs
}
