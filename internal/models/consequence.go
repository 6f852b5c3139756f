package models

// DefaultReputationImpact applies when a consequence carries no reputation impact
const DefaultReputationImpact = -5.0

// Consequence is the narrated and numeric penalty of a violation
type Consequence struct {
	Type             ConsequenceType `json:"type,omitempty"`
	Description      string          `json:"description"`
	VisualEffect     string          `json:"visual_effect"`
	SoundEffect      string          `json:"sound_effect"`
	MoneyImpact      float64         `json:"money_impact"`
	ScoreImpact      int             `json:"score_impact"`
	ReputationImpact *float64        `json:"reputation_impact,omitempty"`
}

// ReputationDelta returns the reputation impact or the default penalty
func (c *Consequence) ReputationDelta() float64 {
	if c.ReputationImpact == nil {
		return DefaultReputationImpact
	}
	return *c.ReputationImpact
}

// Clone returns a copy that does not share the reputation pointer
func (c Consequence) Clone() Consequence {
	out := c
	if c.ReputationImpact != nil {
		v := *c.ReputationImpact
		out.ReputationImpact = &v
	}
	return out
}
