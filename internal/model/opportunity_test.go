package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() map[string]string {
	return map[string]string{
		FieldID:          "OPP-001",
		FieldName:        "Acme renewal",
		FieldAmount:      "125000",
		FieldStage:       "Proposal",
		FieldStatus:      "Open",
		FieldOwner:       "Jordan Lee",
		FieldCreatedDate: "2024-01-15",
		FieldCloseDate:   "",
		FieldLastStage:   "",
	}
}

func TestParseRecord_Open(t *testing.T) {
	o, err := ParseRecord(validRecord())
	require.NoError(t, err)

	assert.Equal(t, "OPP-001", o.ID)
	assert.Equal(t, "Acme renewal", o.Name)
	assert.Equal(t, 125000.0, o.Amount)
	assert.Equal(t, StageProposal, o.Stage)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, "Jordan Lee", o.Owner)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), o.CreatedDate)
	assert.True(t, o.CloseDate.IsZero())
}

func TestParseRecord_Closed(t *testing.T) {
	rec := validRecord()
	rec[FieldStatus] = "Won"
	rec[FieldCloseDate] = "2024-02-14"
	rec[FieldLastStage] = "Negotiation"

	o, err := ParseRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, StatusWon, o.Status)
	assert.Equal(t, StageNegotiation, o.LastStage)
	assert.Equal(t, StageNegotiation, o.EffectiveStage())
	assert.Equal(t, 30, o.CycleDays())
}

func TestParseRecord_MissingRequiredField(t *testing.T) {
	for _, field := range []string{
		FieldID, FieldName, FieldAmount, FieldStage, FieldStatus, FieldOwner, FieldCreatedDate,
	} {
		t.Run(field, func(t *testing.T) {
			rec := validRecord()
			delete(rec, field)

			_, err := ParseRecord(rec)
			require.Error(t, err)

			var se *SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, field, se.Field)
		})
	}
}

func TestParseRecord_CloseDateRequiredWhenClosed(t *testing.T) {
	rec := validRecord()
	rec[FieldStatus] = "Lost"

	_, err := ParseRecord(rec)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, FieldCloseDate, se.Field)
}

func TestParseRecord_MalformedDates(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"created slash format", FieldCreatedDate, "2024/01/15"},
		{"created not a date", FieldCreatedDate, "yesterday"},
		{"created with time", FieldCreatedDate, "2024-01-15T00:00:00Z"},
		{"close bad month", FieldCloseDate, "2024-13-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			if tt.field == FieldCloseDate {
				rec[FieldStatus] = "Won"
			}
			rec[tt.field] = tt.value

			_, err := ParseRecord(rec)
			require.Error(t, err)

			var de *DateParseError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
			assert.Equal(t, tt.value, de.Value)
		})
	}
}

func TestParseRecord_AmountValidation(t *testing.T) {
	rec := validRecord()
	rec[FieldAmount] = "-500"
	_, err := ParseRecord(rec)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, FieldAmount, se.Field)

	rec[FieldAmount] = "lots"
	_, err = ParseRecord(rec)
	require.True(t, errors.As(err, &se))
}

func TestParseRecord_CloseBeforeCreated(t *testing.T) {
	rec := validRecord()
	rec[FieldStatus] = "Won"
	rec[FieldCloseDate] = "2024-01-01"

	_, err := ParseRecord(rec)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, FieldCloseDate, se.Field)
}

func TestParseRecord_UnknownEnumsTolerated(t *testing.T) {
	rec := validRecord()
	rec[FieldStage] = "Qualification"

	o, err := ParseRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, Stage("Qualification"), o.Stage)
	assert.False(t, o.Stage.Known())
	assert.Equal(t, -1, o.Stage.Index())
}

func TestStageOrderIndexes(t *testing.T) {
	assert.Equal(t, 0, StageDiscovery.Index())
	assert.Equal(t, 1, StageDemo.Index())
	assert.Equal(t, 2, StageProposal.Index())
	assert.Equal(t, 3, StageNegotiation.Index())
}

func TestEffectiveStageFallback(t *testing.T) {
	o := Opportunity{Stage: StageDemo, Status: StatusLost}
	assert.Equal(t, StageDemo, o.EffectiveStage())

	o.LastStage = StageProposal
	assert.Equal(t, StageProposal, o.EffectiveStage())
}

func TestStageProbabilities_MissingStageIsZero(t *testing.T) {
	p := StageProbabilities{StageDemo: 0.3}
	assert.Equal(t, 0.3, p.Prob(StageDemo))
	assert.Equal(t, 0.0, p.Prob(StageDiscovery))
	assert.Equal(t, 0.0, p.Prob(Stage("Qualification")))
}

func TestDefaultProbabilities(t *testing.T) {
	p := DefaultProbabilities()
	assert.Equal(t, 0.10, p[StageDiscovery])
	assert.Equal(t, 0.30, p[StageDemo])
	assert.Equal(t, 0.50, p[StageProposal])
	assert.Equal(t, 0.70, p[StageNegotiation])
}

func TestFilter(t *testing.T) {
	opps := []Opportunity{
		{ID: "1", Owner: "ana", Stage: StageDemo, Status: StatusOpen},
		{ID: "2", Owner: "ben", Stage: StageDemo, Status: StatusWon},
		{ID: "3", Owner: "ana", Stage: StageProposal, Status: StatusOpen},
	}

	assert.Len(t, Filter{}.Apply(opps), 3)
	assert.Len(t, Filter{Owner: "ana"}.Apply(opps), 2)
	assert.Len(t, Filter{Stage: StageDemo}.Apply(opps), 2)
	assert.Len(t, Filter{Status: StatusWon}.Apply(opps), 1)

	got := Filter{Owner: "ana", Stage: StageProposal}.Apply(opps)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}
