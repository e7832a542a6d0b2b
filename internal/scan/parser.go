package scan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRE   = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
	doseMgRE = regexp.MustCompile(`\d+\s*mg\b`)
	doseMlRE = regexp.MustCompile(`\d+\s*ml\b`)
	drRE     = regexp.MustCompile(`\bDr\b`)
	refillRE = regexp.MustCompile(`(?i)Refills?[:\s]+(\d+)`)
)

// ParseExtractedText heuristically turns raw OCR text into a prescription.
// It is the fallback path when vision analysis is unavailable, so it always
// returns a usable result rather than an error.
func ParseExtractedText(text string) *Prescription {
	prescription := &Prescription{
		DoctorName: "Unknown Doctor",
		Date:       time.Now().Format("2006-01-02"),
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	// The doctor's name is usually near the top.
	for i := 0; i < len(lines) && i < 5; i++ {
		if strings.Contains(lines[i], "Dr.") || strings.Contains(lines[i], "Doctor") || drRE.MatchString(lines[i]) {
			prescription.DoctorName = strings.TrimSpace(lines[i])
			break
		}
	}

	for _, line := range lines {
		if match := dateRE.FindString(line); match != "" {
			prescription.Date = match
			break
		}
	}

	var current *Medication
	var notes strings.Builder
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		isMedicationLine := strings.Contains(line, "Rx:") || strings.Contains(line, "MEDICATION:") ||
			doseMgRE.MatchString(line) || doseMlRE.MatchString(line) ||
			(len(line) > 3 && !strings.Contains(line, ":") && i > 3)

		switch {
		case isMedicationLine:
			if current != nil {
				prescription.Medications = append(prescription.Medications, *current)
			}
			name := strings.ReplaceAll(line, "Rx:", "")
			name = strings.ReplaceAll(name, "MEDICATION:", "")
			current = &Medication{
				Name:           strings.TrimSpace(name),
				MedicationType: "tablet",
			}

			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if doseMgRE.MatchString(next) || doseMlRE.MatchString(next) {
					current.Dosage = next
					i++
				}
			}
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if isInstructionLine(next) {
					current.Frequency = next
					current.Instructions = next
					i++
				}
			}
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if m := refillRE.FindStringSubmatch(next); m != nil {
					current.Refills, _ = strconv.Atoi(m[1])
					i++
				}
			}

		case current != nil && isInstructionLine(line):
			current.Instructions += " " + line
			current.Frequency = line

		case current != nil && refillRE.MatchString(line):
			if m := refillRE.FindStringSubmatch(line); m != nil {
				current.Refills, _ = strconv.Atoi(m[1])
			}

		case strings.Contains(strings.ToLower(line), "pharmacy"):
			prescription.Pharmacy = strings.TrimSpace(regexp.MustCompile(`(?i)Pharmacy[:\s]*`).ReplaceAllString(line, ""))

		case i > len(lines)/2 && len(line) > 10:
			notes.WriteString(line)
			notes.WriteString(" ")
		}
	}
	if current != nil {
		prescription.Medications = append(prescription.Medications, *current)
	}
	prescription.Notes = strings.TrimSpace(notes.String())

	if len(prescription.Medications) == 0 {
		prescription.Medications = append(prescription.Medications, Medication{
			Name:           "Unknown Medication",
			Dosage:         "Unknown",
			Frequency:      "As directed",
			Instructions:   "Please consult your doctor",
			MedicationType: "unknown",
		})
	}
	return prescription
}

func isInstructionLine(line string) bool {
	return strings.Contains(line, "Take") || strings.Contains(line, "Use") ||
		strings.Contains(line, "daily") || strings.Contains(line, "times")
}

// SuggestSchedule maps a medication's frequency text to dose times in
// 24-hour format.
func SuggestSchedule(medication Medication) []string {
	frequency := strings.ToLower(medication.Frequency)
	instructions := strings.ToLower(medication.Instructions)
	mentions := func(s string) bool {
		return strings.Contains(frequency, s) || strings.Contains(instructions, s)
	}

	// Explicit dose counts win over the generic "daily" wording, so
	// "twice daily" is not mistaken for a single dose.
	switch {
	case strings.Contains(frequency, "twice") || strings.Contains(frequency, "two times") ||
		strings.Contains(frequency, "2 times") || strings.Contains(frequency, "bid"):
		return []string{"08:00", "20:00"}
	case strings.Contains(frequency, "three times") || strings.Contains(frequency, "3 times") ||
		strings.Contains(frequency, "thrice") || strings.Contains(frequency, "tid"):
		return []string{"08:00", "14:00", "20:00"}
	case strings.Contains(frequency, "four times") || strings.Contains(frequency, "4 times") ||
		strings.Contains(frequency, "qid"):
		return []string{"08:00", "12:00", "16:00", "20:00"}
	case strings.Contains(frequency, "once") || strings.Contains(frequency, "daily") || strings.Contains(frequency, "every day"):
		switch {
		case mentions("morning"):
			return []string{"08:00"}
		case mentions("evening"), mentions("night"), mentions("bedtime"), mentions("bed time"):
			return []string{"20:00"}
		case mentions("afternoon"):
			return []string{"14:00"}
		default:
			return []string{"08:00"}
		}
	}

	if m := regexp.MustCompile(`every\s+(\d+)\s+hours?`).FindStringSubmatch(frequency); m != nil {
		interval, _ := strconv.Atoi(m[1])
		if interval > 0 {
			var times []string
			hour := 8
			for len(times) < 24/interval {
				times = append(times, fmt.Sprintf("%02d:00", hour))
				hour = (hour + interval) % 24
				if hour == 8 {
					break
				}
			}
			return times
		}
	}
	return []string{"08:00", "20:00"}
}
