package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {

	sev, err := ParseSeverity("critical")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, sev)

	sev, err = ParseSeverity(" MAJOR ")
	require.NoError(t, err)
	assert.Equal(t, SeverityMajor, sev)

	_, err = ParseSeverity("HIGH")
	assert.True(t, errors.Is(err, ErrInvalidSeverity))
}

func TestRuleValidate(t *testing.T) {

	assert.NoError(t, NewRule("java:S100", SeverityInfo).Validate())
	assert.ErrorIs(t, NewRule("", SeverityInfo).Validate(), ErrEmptyKey)
	assert.ErrorIs(t, NewRule("java:S100", Severity("")).Validate(), ErrInvalidSeverity)
}

func TestRuleGetParam(t *testing.T) {

	r := NewRule("java:S107", SeverityMajor, Param{Key: "max", Value: "7"})

	v, ok := r.GetParam("max")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	_, ok = r.GetParam("min")
	assert.False(t, ok)
}

func TestRuleSetAddKeepsFirstOccurrence(t *testing.T) {

	rs := NewRuleSet()
	assert.True(t, rs.Add(NewRule("S1", SeverityMajor)))
	assert.True(t, rs.Add(NewRule("S2", SeverityMinor)))
	assert.False(t, rs.Add(NewRule("S1", SeverityBlocker)))

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, SeverityMajor, rs.Get("S1").Severity)

	list := rs.List()
	assert.Equal(t, "S1", list[0].Key)
	assert.Equal(t, "S2", list[1].Key)
	assert.Nil(t, rs.Get("S3"))
}

func TestMergeLastWriteWins(t *testing.T) {

	first := []*Rule{
		NewRule("S1", SeverityMajor),
		NewRule("S2", SeverityMinor, Param{Key: "p1", Value: "5"}),
	}
	second := []*Rule{
		NewRule("S2", SeverityCritical),
		NewRule("S3", SeverityInfo),
	}

	rs := Merge(first, second)
	require.Equal(t, 3, rs.Len())

	list := rs.List()
	assert.Equal(t, []string{"S1", "S2", "S3"}, []string{list[0].Key, list[1].Key, list[2].Key})
	assert.Equal(t, SeverityCritical, rs.Get("S2").Severity)
	assert.Empty(t, rs.Get("S2").Params)
}
