package gerberbasetypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDiagnostic_String(t *testing.T) {
	cases := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Severity: SeverityWarning, Block: 3, Text: "G37", Message: "no open region"}, `warning at block 3 ("G37"): no open region`},
		{Diagnostic{Severity: SeverityInfo, Message: "ignored"}, "info: ignored"},
		{Diagnostic{Severity: SeverityError, Text: "T9", Message: "undefined tool"}, `error ("T9"): undefined tool`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.d.String())
	}
}

func TestDiagnostics_Count(t *testing.T) {
	ds := Diagnostics{
		{Severity: SeverityWarning},
		{Severity: SeverityInfo},
		{Severity: SeverityWarning},
	}
	assert.Equal(t, 2, ds.Count(SeverityWarning))
	assert.Equal(t, 1, ds.Count(SeverityInfo))
	assert.Zero(t, ds.Count(SeverityError))
}

func TestSeverity_YAML(t *testing.T) {
	data, err := yaml.Marshal(Diagnostic{Severity: SeverityWarning, Block: 2, Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "severity: warning\nblock: 2\nmessage: m\n", string(data))
	assert.Equal(t, "unknown", Severity(42).String())
}
