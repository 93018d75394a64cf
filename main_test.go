package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/sonartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, s *sonartest.Server) (string, error) {

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{
		"--url", s.URL,
		"--token", sonartest.Token,
		"--first", "AX1",
		"--second", "AX2",
		"--target", "AX3",
		"--log-level", "error",
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestRootCommand(t *testing.T) {

	s := sonartest.NewServer()
	defer s.Close()

	s.SetProfile("AX1", rules.NewRule("S1", rules.SeverityMajor))
	s.SetProfile("AX2", rules.NewRule("S2", rules.SeverityInfo))

	out, err := execute(t, s)
	require.NoError(t, err)
	assert.Contains(t, out, "Combined profile AX3 created with 2 total rules")
	assert.Equal(t, 2, s.Target("AX3").Len())
}

func TestRootCommandReportsFailures(t *testing.T) {

	s := sonartest.NewServer()
	defer s.Close()

	s.SetProfile("AX1", rules.NewRule("S1", rules.SeverityMajor))
	s.SetProfile("AX2", rules.NewRule("S2", rules.SeverityInfo))
	s.FailRule("S2", http.StatusBadRequest)

	out, err := execute(t, s)
	assert.ErrorIs(t, err, errIncomplete)
	assert.Contains(t, out, "1 of 2 activations failed")
}
