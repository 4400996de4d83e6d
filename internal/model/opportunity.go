// Package model defines the sales opportunity entity and its parsing rules.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stage is a pipeline stage. Values outside the four defined stages are
// preserved as-is; they carry zero probability and are excluded from
// stage-keyed aggregations.
type Stage string

const (
	StageDiscovery   Stage = "Discovery"
	StageDemo        Stage = "Demo"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
)

// StageOrder is the funnel order deals move through.
var StageOrder = []Stage{StageDiscovery, StageDemo, StageProposal, StageNegotiation}

// Index returns the position of s in StageOrder, or -1 for unknown stages.
func (s Stage) Index() int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Known reports whether s is one of the four defined stages.
func (s Stage) Known() bool { return s.Index() >= 0 }

// Status is the lifecycle state of an opportunity.
type Status string

const (
	StatusOpen Status = "Open"
	StatusWon  Status = "Won"
	StatusLost Status = "Lost"
)

// Closed reports whether the status is a terminal outcome.
func (s Status) Closed() bool { return s == StatusWon || s == StatusLost }

// Opportunity is a single sales opportunity record. Records are treated as
// immutable snapshots; analyzers never modify them.
type Opportunity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Stage       Stage     `json:"stage"`
	Status      Status    `json:"status"`
	Owner       string    `json:"owner"`
	CreatedDate time.Time `json:"created_date"`
	CloseDate   time.Time `json:"close_date,omitempty"` // zero unless Won/Lost
	LastStage   Stage     `json:"last_stage,omitempty"` // stage at close, if recorded
}

// EffectiveStage returns the stage used for closed-deal attribution:
// LastStage when recorded, otherwise Stage.
func (o Opportunity) EffectiveStage() Stage {
	if o.LastStage != "" {
		return o.LastStage
	}
	return o.Stage
}

// CycleDays returns the whole days between creation and close. Only
// meaningful for closed deals; returns 0 when CloseDate is unset.
func (o Opportunity) CycleDays() int {
	if o.CloseDate.IsZero() {
		return 0
	}
	return int(o.CloseDate.Sub(o.CreatedDate).Hours() / 24)
}

// DaysInPipeline returns whole days since creation relative to today.
func (o Opportunity) DaysInPipeline(today time.Time) int {
	return int(today.Sub(o.CreatedDate).Hours() / 24)
}

// StageProbabilities maps stage to win probability in [0,1]. A missing
// stage contributes probability 0; lookups never fail.
type StageProbabilities map[Stage]float64

// Prob returns the probability for a stage, 0 when unmapped.
func (p StageProbabilities) Prob(s Stage) float64 { return p[s] }

// DefaultProbabilities returns the configured fallback probability table.
func DefaultProbabilities() StageProbabilities {
	return StageProbabilities{
		StageDiscovery:   0.10,
		StageDemo:        0.30,
		StageProposal:    0.50,
		StageNegotiation: 0.70,
	}
}

// SchemaError indicates a record is missing a required field or carries a
// value that violates the data contract.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: field %q %s", e.Field, e.Reason)
}

// DateParseError indicates a date field does not match the YYYY-MM-DD format.
type DateParseError struct {
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("date: field %q has malformed value %q (want YYYY-MM-DD)", e.Field, e.Value)
}

// Record field names from the loader contract.
const (
	FieldID          = "opportunity_id"
	FieldName        = "opportunity_name"
	FieldAmount      = "amount"
	FieldStage       = "stage"
	FieldStatus      = "status"
	FieldOwner       = "owner"
	FieldCreatedDate = "created_date"
	FieldCloseDate   = "close_date"
	FieldLastStage   = "last_stage"
)

// ParseRecord converts a raw string record into an Opportunity.
//
// Required fields: opportunity_id, opportunity_name, amount, stage, status,
// owner, created_date. close_date is required only when status is Won or
// Lost. Unrecognized stage/status values are kept verbatim rather than
// rejected; downstream aggregations treat them as zero-probability and skip
// them in stage-keyed buckets.
func ParseRecord(rec map[string]string) (Opportunity, error) {
	var o Opportunity

	get := func(field string) (string, error) {
		v, ok := rec[field]
		if !ok || strings.TrimSpace(v) == "" {
			return "", &SchemaError{Field: field, Reason: "is required"}
		}
		return strings.TrimSpace(v), nil
	}

	var err error
	if o.ID, err = get(FieldID); err != nil {
		return Opportunity{}, err
	}
	if o.Name, err = get(FieldName); err != nil {
		return Opportunity{}, err
	}

	rawAmount, err := get(FieldAmount)
	if err != nil {
		return Opportunity{}, err
	}
	o.Amount, err = strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		return Opportunity{}, &SchemaError{Field: FieldAmount, Reason: fmt.Sprintf("is not numeric: %q", rawAmount)}
	}
	if o.Amount < 0 {
		return Opportunity{}, &SchemaError{Field: FieldAmount, Reason: "must be non-negative"}
	}

	rawStage, err := get(FieldStage)
	if err != nil {
		return Opportunity{}, err
	}
	o.Stage = Stage(rawStage)

	rawStatus, err := get(FieldStatus)
	if err != nil {
		return Opportunity{}, err
	}
	o.Status = Status(rawStatus)

	if o.Owner, err = get(FieldOwner); err != nil {
		return Opportunity{}, err
	}

	rawCreated, err := get(FieldCreatedDate)
	if err != nil {
		return Opportunity{}, err
	}
	o.CreatedDate, err = parseDate(FieldCreatedDate, rawCreated)
	if err != nil {
		return Opportunity{}, err
	}

	if o.Status.Closed() {
		rawClose, err := get(FieldCloseDate)
		if err != nil {
			return Opportunity{}, err
		}
		o.CloseDate, err = parseDate(FieldCloseDate, rawClose)
		if err != nil {
			return Opportunity{}, err
		}
		if o.CloseDate.Before(o.CreatedDate) {
			return Opportunity{}, &SchemaError{Field: FieldCloseDate, Reason: "precedes created_date"}
		}
	} else if raw := strings.TrimSpace(rec[FieldCloseDate]); raw != "" {
		// Open deals may carry a target close date; validate format only.
		o.CloseDate, err = parseDate(FieldCloseDate, raw)
		if err != nil {
			return Opportunity{}, err
		}
	}

	if raw := strings.TrimSpace(rec[FieldLastStage]); raw != "" {
		o.LastStage = Stage(raw)
	}

	return o, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: value}
	}
	return t, nil
}
