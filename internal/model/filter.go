package model

// Filter narrows an opportunity snapshot before analysis. Zero values match
// everything.
type Filter struct {
	Owner  string `json:"owner,omitempty"`
	Stage  Stage  `json:"stage,omitempty"`
	Status Status `json:"status,omitempty"`
}

// Match reports whether o satisfies every set criterion.
func (f Filter) Match(o Opportunity) bool {
	if f.Owner != "" && o.Owner != f.Owner {
		return false
	}
	if f.Stage != "" && o.Stage != f.Stage {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}

// Apply returns the subset of opps matching the filter. The input slice is
// never modified.
func (f Filter) Apply(opps []Opportunity) []Opportunity {
	if f == (Filter{}) {
		return opps
	}
	var out []Opportunity
	for _, o := range opps {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}
