package domain

import "strings"

type TreatmentType string

const (
	TreatmentConsultation TreatmentType = "consultation"
	TreatmentCleaning     TreatmentType = "cleaning"
	TreatmentFilling      TreatmentType = "filling"
	TreatmentExtraction   TreatmentType = "extraction"
	TreatmentRootCanal    TreatmentType = "root_canal"
	TreatmentCrown        TreatmentType = "crown"
	TreatmentBridge       TreatmentType = "bridge"
	TreatmentImplant      TreatmentType = "implant"
	TreatmentOrthodontics TreatmentType = "orthodontics"
	TreatmentPeriodontal  TreatmentType = "periodontal"
)

var treatmentTypes = map[TreatmentType]struct{}{
	TreatmentConsultation: {},
	TreatmentCleaning:     {},
	TreatmentFilling:      {},
	TreatmentExtraction:   {},
	TreatmentRootCanal:    {},
	TreatmentCrown:        {},
	TreatmentBridge:       {},
	TreatmentImplant:      {},
	TreatmentOrthodontics: {},
	TreatmentPeriodontal:  {},
}

func ParseTreatmentType(value string) (TreatmentType, error) {
	treatment := TreatmentType(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := treatmentTypes[treatment]; !ok {
		return "", NewError(ErrInvalidArgument, "treatment.unknown").
			WithField("treatment", value)
	}
	return treatment, nil
}
