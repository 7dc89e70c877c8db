package dlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const note = `Patient Name: John Doe
MRN: 00123456
DOB: 04/12/1956
Callback (555) 123-4567, email john@example.com
Assessment: NSTEMI`

func TestDetectFindsIdentifiers(t *testing.T) {
	detector, err := NewDetector(DefaultRules())
	require.NoError(t, err)

	result := detector.Detect(note)
	assert.True(t, result.Detected)
	assert.Equal(t, []string{"dob", "email", "mrn", "name", "phone"}, result.Types)
	assert.Equal(t, 0.95, result.Confidence)
	for i := 1; i < len(result.Findings); i++ {
		assert.LessOrEqual(t, result.Findings[i-1].Start, result.Findings[i].Start)
	}
}

func TestRedactMasksButKeepsClinicalText(t *testing.T) {
	detector, err := NewDetector(DefaultRules())
	require.NoError(t, err)

	redacted := detector.Redact(note)
	assert.NotContains(t, redacted, "John Doe")
	assert.NotContains(t, redacted, "00123456")
	assert.NotContains(t, redacted, "04/12/1956")
	assert.NotContains(t, redacted, "john@example.com")
	assert.Contains(t, redacted, "Patient Name: [NAME]")
	assert.Contains(t, redacted, "Assessment: NSTEMI")
}

func TestNilDetector(t *testing.T) {
	var d *Detector
	assert.Equal(t, "MRN: 1234", d.Redact("MRN: 1234"))
	assert.False(t, d.Detect("MRN: 1234").Detected)
}

func TestLoadRules(t *testing.T) {
	cfg, err := LoadRules("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Rules)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: Bed\n    type: bed\n    pattern: 'Bed \\d+'\n    mask: '[BED]'\n    enabled: true\n"), 0o600))
	cfg, err = LoadRules(path)
	require.NoError(t, err)

	d, err := NewDetector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "moved to [BED]", d.Redact("moved to Bed 12"))

	_, err = NewDetector(RulesConfig{Rules: []Rule{{Pattern: "(", Enabled: true}}})
	assert.Error(t, err)
}
