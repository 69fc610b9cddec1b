// Package rules manages auto-categorization rules. A rule matches one
// transaction field against a pattern and writes a value into another field;
// higher priority wins when several rules match.
package rules

type Rule struct {
	ID           int64
	Priority     int
	MatchField   string
	MatchPattern string
	ActionField  string
	ActionValue  string
}
