package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stemiNote = "BP: 120/80 HR: 72\nAssessment: STEMI\nPlan: Aspirin 325mg, cath lab"

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("HEURISTICS_BACKEND", "file")
	t.Setenv("HEURISTICS_DIR", filepath.Join(t.TempDir(), "heuristics"))
	t.Setenv("ENRICHMENT_URL", "")
	return t.TempDir()
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeNote(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	dir := setup(t)
	a := writeNote(t, dir, "a.txt", stemiNote)
	b := writeNote(t, dir, "b.txt", "")

	out, err := run(t, "", "parse", "--json", "--evidence", a, b)
	require.NoError(t, err, out)

	var results []parseResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].File)
	assert.Contains(t, results[0].Record.Data.Diagnoses, "STEMI")
	assert.Contains(t, results[0].Plan, "STEMI / Acute Coronary Syndrome")
	assert.Equal(t, []string{"Empty or invalid input"}, results[1].Record.Warnings)
	assert.Empty(t, results[1].Plan)
}

func TestParseSummaryFromStdin(t *testing.T) {
	setup(t)

	out, err := run(t, stemiNote, "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "== -")
	assert.Contains(t, out, "Confidence: 0.55  Strategy: headers")
	assert.Contains(t, out, "Vitals: BP 120/80 HR 72")
	assert.Contains(t, out, "Diagnoses: STEMI")
}

func TestParseErrors(t *testing.T) {
	dir := setup(t)

	_, err := run(t, "", "parse", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = run(t, stemiNote, "parse", "--format", "clinic-z")
	assert.ErrorContains(t, err, "not trained")

	_, err = run(t, stemiNote, "parse", "-", "-")
	assert.ErrorContains(t, err, "stdin")
}

func TestFormatsLifecycle(t *testing.T) {
	dir := setup(t)
	note := writeNote(t, dir, "trained.txt", "Pt seen.\nImpr >> NSTEMI with ongoing chest pain\nRecs >> heparin drip and cardiology consult for cath")

	out, err := run(t, "", "formats", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No trained formats.")

	out, err = run(t, "", "formats", "save", "clinic-b", "-a", "assessment=Impr >>", "-a", "plan=Recs >>")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Saved format clinic-b with 2 sections")

	out, err = run(t, "", "formats", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "clinic-b")
	assert.Contains(t, out, "assessment,plan")

	out, err = run(t, "", "parse", "--json", note)
	require.NoError(t, err)
	var results []parseResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, "clinic-b", results[0].Record.Raw.Format)

	exported := filepath.Join(dir, "formats.json")
	_, err = run(t, "", "formats", "export", "-o", exported)
	require.NoError(t, err)

	_, err = run(t, "", "formats", "delete", "clinic-b")
	require.NoError(t, err)
	_, err = run(t, "", "formats", "delete", "clinic-b")
	assert.Error(t, err)

	out, err = run(t, "", "formats", "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 formats")

	out, err = run(t, "", "formats", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"clinic-b"`)
}

func TestFormatsSaveRejectsBadAlias(t *testing.T) {
	setup(t)

	_, err := run(t, "", "formats", "save", "x", "-a", "assessment")
	assert.ErrorContains(t, err, "want section=text")

	_, err = run(t, "", "formats", "save", "x", "-a", "nonsense=Foo:")
	assert.Error(t, err)
}

func TestEvidence(t *testing.T) {
	dir := setup(t)
	note := writeNote(t, dir, "note.txt", "Assessment: NSTEMI\nPMH: recent surgery last week")

	out, err := run(t, "", "evidence", note)
	require.NoError(t, err)
	assert.Contains(t, out, "[CHECK CONTRAINDICATIONS]")
	assert.Contains(t, out, "recent surgery (in PMH)")

	out, err = run(t, "Assessment: ankle sprain", "evidence")
	require.NoError(t, err)
	assert.Contains(t, out, "No guideline protocol matches")
}
