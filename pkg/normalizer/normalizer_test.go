package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTransformations(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"smart quotes", "“chest pain” and patient’s", `"chest pain" and patient's`},
		{"dashes", "BP 120–130 — stable", "BP 120-130 - stable"},
		{"ellipsis", "denies…", "denies..."},
		{"nbsp", "HR\u00a072", "HR 72"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"trailing whitespace", "line one   \nline two\t", "line one\nline two"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"space runs", "a  \t  b", "a b"},
		{"outer trim", "\n\n  text  \n\n", "text"},
		{"zero width", "Plan\u200b:", "Plan:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"HPI:\r\n  65 yo M with  chest pain…\r\n\r\n\r\n\r\nPlan: “ASA”\t\n",
		"\n\n\n a \n \n \n b \n",
		"e\u0301 caf\u00e9 \u200b\u200b x",
		"\t\f\v mixed \v\f\t whitespace \t",
		"- bullet one\n- bullet two\n\n\n\n1) numbered",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeValueNeverFails(t *testing.T) {
	assert.Equal(t, "", NormalizeValue(nil))
	assert.Equal(t, "", NormalizeValue(42))
	assert.Equal(t, "abc", NormalizeValue([]byte(" abc ")))
	assert.Equal(t, "x y", NormalizeValue("x   y"))
}

func TestExtractDates(t *testing.T) {
	text := "Admitted 2024-03-05, seen 03/07/2024 and on March 9th, 2024. " +
		"Follow up 12 Apr 2024. Duplicate 2024-03-05. Bad 13/01/2024 and 2023-02-30. Short 1/2/24."
	assert.Equal(t, []string{
		"2024-01-02",
		"2024-03-05",
		"2024-03-07",
		"2024-03-09",
		"2024-04-12",
	}, ExtractDates(text))
}

func TestExtractDatesIgnoresBloodPressure(t *testing.T) {
	assert.Empty(t, ExtractDates("BP 120/80, HR 72"))
	assert.Nil(t, ExtractDates(""))
}
