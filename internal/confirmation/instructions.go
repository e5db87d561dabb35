package confirmation

// baseInstructions is the checklist every visit gets.
var baseInstructions = []string{
	"Keep your phone reachable; the professional will call when nearby.",
	"Have a valid ID and any previous medical records ready.",
	"Clear a well-lit space for the assessment.",
	"List current medications and dosages for review.",
}

// serviceInstructions holds per-service additions keyed by catalog service
// id. Unknown ids fall back to the base checklist only.
var serviceInstructions = map[string][]string{
	"general-checkup": {
		"Avoid heavy meals for two hours before the visit.",
	},
	"elderly-care": {
		"Have a family member or caregiver present if possible.",
	},
	"wound-dressing": {
		"Do not remove the existing dressing before the professional arrives.",
	},
	"post-surgery": {
		"Keep your discharge summary and surgical notes available.",
		"Do not take pain medication within one hour of the visit unless prescribed.",
	},
	"physiotherapy": {
		"Wear loose, comfortable clothing.",
		"Clear floor space of roughly two by two metres.",
	},
	"routine-injection": {
		"Have your prescription and the medication available if supplied by you.",
	},
	"vitals-monitoring": {
		"Avoid caffeine for one hour before the visit.",
	},
	"emergency-response": {
		"Unlock the entrance and brief anyone present on the situation.",
		"If the condition worsens before arrival, call emergency services immediately.",
	},
}

// assessmentInstructions concatenates the base checklist with any
// service-specific additions.
func assessmentInstructions(serviceID string) []string {
	out := make([]string, 0, len(baseInstructions)+2)
	out = append(out, baseInstructions...)
	out = append(out, serviceInstructions[serviceID]...)
	return out
}
