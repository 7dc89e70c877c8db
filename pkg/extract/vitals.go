package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

var (
	bpRegex     = regexp.MustCompile(`(?i)\b(?:BP|blood pressure)\s*:?\s*(\d{2,3})\s*/\s*(\d{2,3})\b`)
	hrRegex     = regexp.MustCompile(`(?i)\b(?:HR|heart rate|pulse)\s*:?\s*(\d{2,3})\b`)
	rrRegex     = regexp.MustCompile(`(?i)\b(?:RR|resp(?:iratory)? rate|resp)\s*:?\s*(\d{1,2})\b`)
	tempRegex   = regexp.MustCompile(`(?i)\b(?:temp(?:erature)?|T)\s*:?\s*(\d{2,3}(?:\.\d+)?)\s*(?:°\s*)?[FC]?\b`)
	spo2Regex   = regexp.MustCompile(`(?i)\b(?:SpO2|SaO2|O2 sat(?:uration)?|sat(?:uration)?)\s*:?\s*(\d{2,3})\s*%?`)
	weightRegex = regexp.MustCompile(`(?i)\b(?:wt|weight)\s*:?\s*(\d{1,3}(?:\.\d+)?)\s*(?:kg|lbs?)?\b`)

	bpRangeRegex  = regexp.MustCompile(`(?i)\b(?:BP|SBP/DBP)\s*:?\s*(\d{2,3})\s*/\s*(\d{2,3})\s*-\s*(\d{2,3})\s*/\s*(\d{2,3})\b`)
	valRangeRegex = regexp.MustCompile(`(?i)\b(HR|heart rate|pulse|RR|resp|temp|T|SpO2|sat)\s*:?\s*(\d{2,3}(?:\.\d+)?)\s*-\s*(\d{2,3}(?:\.\d+)?)\b`)

	cellSplitRegex = regexp.MustCompile(`\s*\|\s*|\t+|\s{2,}`)
)

// ExtractVitals recognises three layouts: a header row of vital names over
// a row of values ("table"), per-vital min-max ranges ("minmax") and inline
// mentions such as "BP 120/80 HR 72". Structured layouts take precedence.
func ExtractVitals(text string) models.Vitals {
	if strings.TrimSpace(text) == "" {
		return models.Vitals{}
	}
	if v, ok := tableVitals(text); ok {
		return v
	}
	if v, ok := minMaxVitals(text); ok {
		return v
	}
	return inlineVitals(text)
}

func inlineVitals(text string) models.Vitals {
	var v models.Vitals
	if m := bpRegex.FindStringSubmatch(text); m != nil {
		setBP(&v, atoi(m[1]), atoi(m[2]))
	}
	if m := hrRegex.FindStringSubmatch(text); m != nil {
		setVital(&v, "hr", atof(m[1]))
	}
	if m := rrRegex.FindStringSubmatch(text); m != nil {
		setVital(&v, "rr", atof(m[1]))
	}
	if m := tempRegex.FindStringSubmatch(text); m != nil {
		setVital(&v, "temp", atof(m[1]))
	}
	if m := spo2Regex.FindStringSubmatch(text); m != nil {
		setVital(&v, "spo2", atof(m[1]))
	}
	if m := weightRegex.FindStringSubmatch(text); m != nil {
		setVital(&v, "weight", atof(m[1]))
	}
	return v
}

// minMaxVitals needs at least two ranged vitals; the maximum is kept.
func minMaxVitals(text string) (models.Vitals, bool) {
	var v models.Vitals
	ranges := 0
	if m := bpRangeRegex.FindStringSubmatch(text); m != nil {
		if setBP(&v, atoi(m[3]), atoi(m[4])) {
			ranges++
		}
	}
	for _, m := range valRangeRegex.FindAllStringSubmatch(text, -1) {
		if setVital(&v, vitalName(m[1]), atof(m[3])) {
			ranges++
		}
	}
	if ranges < 2 {
		return models.Vitals{}, false
	}
	v.Format = models.VitalsFormatMinMax
	return v, true
}

// tableVitals looks for a header line naming at least two vitals followed
// by a value line with the same number of cells.
func tableVitals(text string) (models.Vitals, bool) {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines)-1; i++ {
		names, values, ok := tableRow(lines[i], lines[i+1])
		if !ok {
			continue
		}

		var v models.Vitals
		set := 0
		for j, name := range names {
			if name == "" {
				continue
			}
			if name == "bp" {
				parts := strings.SplitN(values[j], "/", 2)
				if len(parts) == 2 && setBP(&v, atoi(parts[0]), atoi(parts[1])) {
					set++
				}
				continue
			}
			if setVital(&v, name, leadingNumber(values[j])) {
				set++
			}
		}
		if set >= 2 {
			v.Format = models.VitalsFormatTable
			return v, true
		}
	}
	return models.Vitals{}, false
}

// tableRow pairs a header line with the line below it. Delimited cells are
// tried first. Normalized text has its tabs and column padding collapsed to
// single spaces, so a header made only of single-word vital names is also
// accepted when split on spaces.
func tableRow(headerLine, valueLine string) (names, values []string, ok bool) {
	if header := splitCells(headerLine); len(header) >= 2 {
		names = make([]string, len(header))
		known := 0
		for j, cell := range header {
			names[j] = vitalName(cell)
			if names[j] != "" {
				known++
			}
		}
		if values = splitCells(valueLine); known >= 2 && len(values) == len(header) {
			return names, values, true
		}
	}

	fields := strings.Fields(headerLine)
	if len(fields) < 2 {
		return nil, nil, false
	}
	names = make([]string, len(fields))
	for j, f := range fields {
		if names[j] = vitalName(f); names[j] == "" {
			return nil, nil, false
		}
	}
	values = strings.Fields(valueLine)
	if len(values) != len(fields) {
		return nil, nil, false
	}
	return names, values, true
}

func splitCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	if line == "" {
		return nil
	}
	var cells []string
	for _, c := range cellSplitRegex.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func vitalName(label string) string {
	switch strings.ToLower(strings.TrimSpace(strings.TrimSuffix(label, ":"))) {
	case "bp", "blood pressure", "sbp/dbp":
		return "bp"
	case "hr", "heart rate", "pulse":
		return "hr"
	case "rr", "resp", "resp rate", "respiratory rate":
		return "rr"
	case "t", "temp", "temperature", "tmax":
		return "temp"
	case "spo2", "sao2", "o2 sat", "sat", "o2":
		return "spo2"
	case "wt", "weight":
		return "weight"
	}
	return ""
}

func setBP(v *models.Vitals, sys, dia int) bool {
	if sys < 50 || sys > 300 || dia < 20 || dia > 200 || dia >= sys {
		return false
	}
	v.Systolic, v.Diastolic = sys, dia
	v.BP = strconv.Itoa(sys) + "/" + strconv.Itoa(dia)
	return true
}

// setVital stores value when it is physiologically plausible.
func setVital(v *models.Vitals, name string, value float64) bool {
	switch name {
	case "hr":
		if value >= 20 && value <= 250 {
			v.HR = int(value)
			return true
		}
	case "rr":
		if value >= 4 && value <= 80 {
			v.RR = int(value)
			return true
		}
	case "temp":
		if (value >= 30 && value <= 45) || (value >= 86 && value <= 113) {
			v.Temp = value
			return true
		}
	case "spo2":
		if value >= 50 && value <= 100 {
			v.SpO2 = int(value)
			return true
		}
	case "weight":
		if value >= 1 && value <= 700 {
			v.Weight = value
			return true
		}
	}
	return false
}

var leadingNumberRegex = regexp.MustCompile(`^\d+(?:\.\d+)?`)

func leadingNumber(s string) float64 {
	return atof(leadingNumberRegex.FindString(strings.TrimSpace(s)))
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
