package flow

import (
	"regexp"
	"strings"

	"github.com/futig/medwatch-backend/internal/entity"
)

var (
	explicitDevicePattern     = wordPattern("medical device")
	explicitMedicationPattern = wordPattern("medicine", "prescription", "over-the-counter")
	explicitOtherPattern      = wordPattern("cosmetic", "dietary supplement", "food", "other")

	logDeviceTerms     = []string{"medical device", "device"}
	logMedicationTerms = []string{"medicine", "medication", "pill", "syrup", "injection"}
)

// wordPattern matches any of terms as whole words, so "other" does not
// fire inside "another" or "mother".
func wordPattern(terms ...string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Classify resolves the product class for the current turn. A conclusive
// product type answer wins, otherwise the user side of the log plus the
// answer being recorded is scanned.
func Classify(productTypeAnswer string, hasProductTypeAnswer bool, turns []entity.Turn, current string) entity.ProductClass {
	if hasProductTypeAnswer {
		if class := classifyExplicit(productTypeAnswer); class != entity.ProductClassUnknown {
			return class
		}
	}

	return classifyByKeywords(turns, current)
}

// classifyExplicit treats any mention of "medical device" as a device: the
// question lists "Medical Device, Other" as choices and pumps deliver
// medicine. Medication and other only count when they do not both match.
func classifyExplicit(answer string) entity.ProductClass {
	answer = strings.ToLower(answer)

	if explicitDevicePattern.MatchString(answer) {
		return entity.ProductClassMedicalDevice
	}

	medication := explicitMedicationPattern.MatchString(answer)
	other := explicitOtherPattern.MatchString(answer)
	switch {
	case medication && !other:
		return entity.ProductClassMedication
	case other && !medication:
		return entity.ProductClassOther
	default:
		return entity.ProductClassUnknown
	}
}

func classifyByKeywords(turns []entity.Turn, current string) entity.ProductClass {
	var device, medication bool

	scan := func(text string) {
		text = strings.ToLower(text)
		device = device || containsAny(text, logDeviceTerms)
		medication = medication || containsAny(text, logMedicationTerms)
	}

	for _, turn := range turns {
		if turn.Role == entity.RoleUser {
			scan(turn.Content)
		}
	}
	scan(current)

	switch {
	case device && !medication:
		return entity.ProductClassMedicalDevice
	case medication && !device:
		return entity.ProductClassMedication
	default:
		return entity.ProductClassUnknown
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
