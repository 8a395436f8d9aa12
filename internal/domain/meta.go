package domain

// TokenMeta locates an outcome token within its market condition.
// Built by the engine from token-pair lookups; a token without metadata
// is treated conservatively everywhere (zero unrealized contribution,
// excluded from phantom pairing).
type TokenMeta struct {
	ConditionID  string
	OutcomeIndex int
}
