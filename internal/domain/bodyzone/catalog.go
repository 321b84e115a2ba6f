package bodyzone

import "regexp"

// Rule is one catalog entry. Patterns and Exclude are matched against the
// cleaned location token. Lateral rules expand each base zone to its
// _left/_right variants according to the detected side.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Exclude  []*regexp.Regexp
	Zones    []string
	Lateral  bool
}

func words(expr string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + expr + `)\b`)
}

// Catalog is the ordered zone catalog.
var Catalog = []Rule{
	{Name: "head", Patterns: []*regexp.Regexp{words(`CABEZA|CRANEO|CUERO CABELLUDO|FRENTE|HEAD|SKULL|SCALP`)}, Zones: []string{"head"}},
	{Name: "face", Patterns: []*regexp.Regexp{words(`CARA|ROSTRO|NARIZ|BOCA|LABIOS?|MANDIBULA|MENTON|DIENTES?|FACE|NOSE|MOUTH|JAW|LIPS?`)}, Zones: []string{"face"}},
	{Name: "eye", Patterns: []*regexp.Regexp{words(`OJOS?|PARPADOS?|OCULAR|EYES?|EYELIDS?`)}, Zones: []string{"eye"}, Lateral: true},
	{Name: "ear", Patterns: []*regexp.Regexp{words(`OREJAS?|OIDOS?|AUDITIVO|EARS?`)}, Zones: []string{"ear"}, Lateral: true},
	{Name: "neck", Patterns: []*regexp.Regexp{words(`CUELLO|CERVICAL|NUCA|NECK`)}, Zones: []string{"neck"}},
	{Name: "shoulder", Patterns: []*regexp.Regexp{words(`HOMBROS?|CLAVICULA|SHOULDERS?|COLLARBONE`)}, Zones: []string{"shoulder"}, Lateral: true},
	{Name: "arm", Patterns: []*regexp.Regexp{words(`BRAZOS?|HUMERO|ARMS?`)}, Zones: []string{"arm"}, Lateral: true},
	{Name: "elbow", Patterns: []*regexp.Regexp{words(`CODOS?|ELBOWS?`)}, Zones: []string{"elbow"}, Lateral: true},
	{Name: "forearm", Patterns: []*regexp.Regexp{words(`ANTEBRAZOS?|FOREARMS?`)}, Zones: []string{"forearm"}, Lateral: true},
	{Name: "wrist", Patterns: []*regexp.Regexp{words(`MUNECAS?|WRISTS?`)}, Zones: []string{"wrist"}, Lateral: true},
	{
		Name:     "hand",
		Patterns: []*regexp.Regexp{words(`MANOS?|DEDOS?|PULGAR|INDICE|PALMA|FALANGES?|HANDS?|FINGERS?|THUMBS?|PALM`)},
		Exclude:  []*regexp.Regexp{words(`PIES?|TOES?|ORTEJOS?`)},
		Zones:    []string{"hand"},
		Lateral:  true,
	},
	{Name: "chest", Patterns: []*regexp.Regexp{words(`TORAX|PECHO|COSTILLAS?|ESTERNON|CHEST|RIBS?|THORAX`)}, Zones: []string{"chest"}},
	{Name: "abdomen", Patterns: []*regexp.Regexp{words(`ABDOMEN|ABDOMINAL|ESTOMAGO|VIENTRE|STOMACH|BELLY`)}, Zones: []string{"abdomen"}},
	{
		Name:     "upper_back",
		Patterns: []*regexp.Regexp{words(`ESPALDA|DORSAL|OMOPLATO|BACK`)},
		Exclude:  []*regexp.Regexp{words(`BAJA|LUMBAR|LOWER|BAJO`)},
		Zones:    []string{"upper_back"},
	},
	{Name: "lower_back", Patterns: []*regexp.Regexp{words(`LUMBAR|ZONA LUMBAR|ESPALDA BAJA|SACRO|COCCIX|LOWER BACK`)}, Zones: []string{"lower_back"}},
	{Name: "pelvis", Patterns: []*regexp.Regexp{words(`PELVIS|INGLE|GENITALES|GROIN`)}, Zones: []string{"pelvis"}},
	{Name: "hip", Patterns: []*regexp.Regexp{words(`CADERAS?|HIPS?`)}, Zones: []string{"hip"}, Lateral: true},
	{Name: "thigh", Patterns: []*regexp.Regexp{words(`MUSLOS?|FEMUR|THIGHS?`)}, Zones: []string{"thigh"}, Lateral: true},
	{Name: "knee", Patterns: []*regexp.Regexp{words(`RODILLAS?|ROTULA|KNEES?`)}, Zones: []string{"knee"}, Lateral: true},
	{Name: "leg", Patterns: []*regexp.Regexp{words(`PIERNAS?|PANTORRILLAS?|TIBIA|PERONE|GEMELOS?|LEGS?|CALF|SHIN`)}, Zones: []string{"leg"}, Lateral: true},
	{Name: "ankle", Patterns: []*regexp.Regexp{words(`TOBILLOS?|ANKLES?`)}, Zones: []string{"ankle"}, Lateral: true},
	{
		Name:     "foot",
		Patterns: []*regexp.Regexp{words(`PIES?|TALON|PLANTA DEL PIE|FOOT|FEET|HEEL`)},
		Exclude:  []*regexp.Regexp{words(`DEDOS?|ORTEJOS?|TOES?|FINGERS?`)},
		Zones:    []string{"foot"},
		Lateral:  true,
	},
	{
		Name:     "toes",
		Patterns: []*regexp.Regexp{words(`DEDOS? DEL PIE|DEDOS? DE LOS PIES|DEDOS? DEL PIES|ORTEJOS?|TOES?`)},
		Zones:    []string{"toes"},
		Lateral:  true,
	},
	{
		Name:     "whole_body",
		Patterns: []*regexp.Regexp{words(`CUERPO COMPLETO|POLITRAUMATISMO|MULTIPLES?|GENERALIZADO|WHOLE BODY|MULTIPLE`)},
		Zones:    []string{"whole_body"},
	},
}

