package ranking

import "gopkg.in/yaml.v3"

// ScorerConfig holds the additive score values used by object and term search.
type ScorerConfig struct {
	// Object search
	ObjNameMatch    int         `yaml:"obj_name_match"`    // default: 11
	ObjPartialMatch int         `yaml:"obj_partial_match"` // default: 6
	ObjPrio         map[int]int `yaml:"obj_prio"`          // default: {0: 15, 1: 5, 2: -5}
	ObjPrioDefault  int         `yaml:"obj_prio_default"`  // default: 0

	// Term search
	Title        int `yaml:"title"`         // default: 15
	PartialTitle int `yaml:"partial_title"` // default: 7
	Term         int `yaml:"term"`          // default: 5
	PartialTerm  int `yaml:"partial_term"`  // default: 2

	// decoded marks a table read from YAML, where omitted keys already hold
	// defaults and a zero is an explicit setting.
	decoded bool
}

// DefaultScorerConfig returns the default score table.
func DefaultScorerConfig() *ScorerConfig {
	return &ScorerConfig{
		ObjNameMatch:    11,
		ObjPartialMatch: 6,
		ObjPrio: map[int]int{
			0: 15, // important results
			1: 5,  // object results
			2: -5, // unimportant results
		},
		ObjPrioDefault: 0,

		Title:        15,
		PartialTitle: 7,
		Term:         5,
		PartialTerm:  2,
	}
}

// UnmarshalYAML starts from the default table, so only the keys present in
// the document change. obj_prio entries override the default priorities one
// by one.
func (c *ScorerConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ScorerConfig
	defaults := DefaultScorerConfig()
	p := plain(*defaults)
	p.ObjPrio = nil
	if err := value.Decode(&p); err != nil {
		return err
	}
	for prio, bonus := range p.ObjPrio {
		defaults.ObjPrio[prio] = bonus
	}
	p.ObjPrio = defaults.ObjPrio
	*c = ScorerConfig(p)
	c.decoded = true
	return nil
}

// ApplyDefaults fills in zero values with defaults. ObjPrioDefault is left
// alone since zero is its default. A table decoded from YAML is complete and
// left as is.
func (c *ScorerConfig) ApplyDefaults() {
	if c.decoded {
		return
	}
	defaults := DefaultScorerConfig()

	if c.ObjNameMatch == 0 {
		c.ObjNameMatch = defaults.ObjNameMatch
	}
	if c.ObjPartialMatch == 0 {
		c.ObjPartialMatch = defaults.ObjPartialMatch
	}
	if c.ObjPrio == nil {
		c.ObjPrio = defaults.ObjPrio
	}

	if c.Title == 0 {
		c.Title = defaults.Title
	}
	if c.PartialTitle == 0 {
		c.PartialTitle = defaults.PartialTitle
	}
	if c.Term == 0 {
		c.Term = defaults.Term
	}
	if c.PartialTerm == 0 {
		c.PartialTerm = defaults.PartialTerm
	}
}

// priority returns the bonus for an object priority.
func (c *ScorerConfig) priority(p int) int {
	if bonus, ok := c.ObjPrio[p]; ok {
		return bonus
	}
	return c.ObjPrioDefault
}
