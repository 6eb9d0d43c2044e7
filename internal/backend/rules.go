package backend

import (
	"regexp"
	"strings"
)

// matcher reports whether lowercased document text satisfies a rule.
type matcher func(text string) bool

func anyOf(terms ...string) matcher {
	return func(text string) bool {
		for _, t := range terms {
			if strings.Contains(text, t) {
				return true
			}
		}
		return false
	}
}

func allOf(ms ...matcher) matcher {
	return func(text string) bool {
		for _, m := range ms {
			if !m(text) {
				return false
			}
		}
		return true
	}
}

func oneOf(ms ...matcher) matcher {
	return func(text string) bool {
		for _, m := range ms {
			if m(text) {
				return true
			}
		}
		return false
	}
}

func none(terms ...string) matcher {
	m := anyOf(terms...)
	return func(text string) bool { return !m(text) }
}

// word matches short abbreviations only on word boundaries so that
// "aki" does not fire inside "taking".
func word(w string) matcher {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	return re.MatchString
}

type typeRule struct {
	match   matcher
	docType DocumentType
}

// classifyRules are checked in order; the first match wins.
var classifyRules = []typeRule{
	{anyOf("wbc", "hemoglobin", "platelets", "rbc"), CompleteBloodCount},
	{anyOf("sodium", "potassium", "creatinine", "glucose"), BasicMetabolicPanel},
	{anyOf("ct ", "ct-", "computed tomography"), CT},
	{anyOf("x-ray", "xray", "radiograph"), XRay},
}

type codeRule struct {
	match   matcher
	finding CodeFinding
	// unless suppresses the rule when a prior rule already emitted this code.
	unless string
}

// codeRules are evaluated in order and every match appends its finding.
var codeRules = []codeRule{
	{
		match: oneOf(allOf(anyOf("13.2"), anyOf("wbc")), anyOf("leukocyt")),
		finding: CodeFinding{
			Code:        "D72.829",
			Description: "Elevated white blood cell count, unspecified",
			Confidence:  0.9,
			Evidence:    []string{"WBC 13.2 elevated", "leukocytosis"},
		},
	},
	{
		match: allOf(anyOf("9.2", "low"), anyOf("hemoglobin", "hgb", "anemia")),
		finding: CodeFinding{
			Code:        "D64.9",
			Description: "Anemia, unspecified",
			Confidence:  0.85,
			Evidence:    []string{"low hemoglobin", "anemia"},
		},
	},
	{
		match: oneOf(allOf(anyOf("45", "critically low"), anyOf("platelet")), anyOf("thrombocytopenia")),
		finding: CodeFinding{
			Code:        "D69.6",
			Description: "Thrombocytopenia, unspecified",
			Confidence:  0.9,
			Evidence:    []string{"critically low platelets", "thrombocytopenia"},
		},
	},
	{
		match: oneOf(allOf(anyOf("3.0"), anyOf("potassium")), anyOf("hypokal")),
		finding: CodeFinding{
			Code:        "E87.6",
			Description: "Hypokalemia",
			Confidence:  0.88,
			Evidence:    []string{"potassium 3.0 low", "hypokalemia"},
		},
	},
	{
		match: oneOf(allOf(anyOf("152"), anyOf("sodium")), anyOf("hypernatremia")),
		finding: CodeFinding{
			Code:        "E87.0",
			Description: "Hyperosmolality and hypernatremia",
			Confidence:  0.85,
			Evidence:    []string{"sodium 152 high", "hypernatremia"},
		},
	},
	{
		match: oneOf(
			allOf(anyOf("2.8", "elevated"), anyOf("creatinine")),
			anyOf("acute kidney injury"),
			word("aki"),
		),
		finding: CodeFinding{
			Code:        "N17.9",
			Description: "Acute kidney failure, unspecified",
			Confidence:  0.82,
			Evidence:    []string{"elevated creatinine", "acute kidney injury"},
		},
	},
	{
		match: anyOf("pneumonia"),
		finding: CodeFinding{
			Code:        "J18.9",
			Description: "Pneumonia, unspecified organism",
			Confidence:  0.88,
			Evidence:    []string{"pneumonia on imaging"},
		},
	},
	{
		match: allOf(anyOf("fracture"), anyOf("radius", "wrist")),
		finding: CodeFinding{
			Code:        "S52.5",
			Description: "Fracture of lower end of radius",
			Confidence:  0.9,
			Evidence:    []string{"distal radius fracture"},
		},
	},
	{
		match: allOf(anyOf("effusion"), anyOf("pleural")),
		finding: CodeFinding{
			Code:        "J91.8",
			Description: "Pleural effusion in other conditions",
			Confidence:  0.85,
			Evidence:    []string{"pleural effusion noted"},
		},
	},
	{
		match: allOf(anyOf("lacunar"), anyOf("infarct")),
		finding: CodeFinding{
			Code:        "I63.9",
			Description: "Cerebral infarction, unspecified",
			Confidence:  0.82,
			Evidence:    []string{"lacunar infarct"},
		},
	},
	{
		match: anyOf("mass", "nodule"),
		finding: CodeFinding{
			Code:        "R91.8",
			Description: "Other nonspecific abnormal finding of lung field",
			Confidence:  0.75,
			Evidence:    []string{"pulmonary mass/nodule"},
		},
	},
	{
		match: allOf(anyOf("diabetes"), anyOf("neuropath")),
		finding: CodeFinding{
			Code:        "E11.40",
			Description: "Type 2 diabetes mellitus with diabetic neuropathy, unspecified",
			Confidence:  0.85,
			Evidence:    []string{"type 2 diabetes", "neuropathy"},
		},
	},
	{
		match: anyOf("type 2 diabetes", "t2dm"),
		finding: CodeFinding{
			Code:        "E11.9",
			Description: "Type 2 diabetes mellitus without complications",
			Confidence:  0.88,
			Evidence:    []string{"type 2 diabetes"},
		},
		unless: "E11.40",
	},
	{
		match: oneOf(anyOf("hypertension"), word("htn")),
		finding: CodeFinding{
			Code:        "I10",
			Description: "Essential (primary) hypertension",
			Confidence:  0.9,
			Evidence:    []string{"hypertension"},
		},
	},
	{
		match: anyOf("copd", "chronic obstructive"),
		finding: CodeFinding{
			Code:        "J44.9",
			Description: "Chronic obstructive pulmonary disease, unspecified",
			Confidence:  0.88,
			Evidence:    []string{"COPD"},
		},
	},
	{
		match: oneOf(anyOf("myocardial infarction", "heart attack"), word("mi")),
		finding: CodeFinding{
			Code:        "I21.9",
			Description: "Acute myocardial infarction, unspecified",
			Confidence:  0.85,
			Evidence:    []string{"myocardial infarction"},
		},
	},
}

// band classifies an analyte value strictly below limit.
type band struct {
	below  float64
	format string
}

// analyte extracts a single lab value and renders one bullet from the first
// band the value falls under, or from above when it exceeds every band.
type analyte struct {
	pattern  *regexp.Regexp
	citation string
	bands    []band
	above    string
}

var analytes = []analyte{
	{
		pattern:  regexp.MustCompile(`\bwbc[:\s]+(\d+(?:\.\d+)?)`),
		citation: "WBC %s",
		bands: []band{
			{4.0, "Leukopenia: WBC %s x10^3/µL low"},
			{11.0, "WBC normal at %s x10^3/µL"},
		},
		above: "Leukocytosis: WBC %s x10^3/µL elevated",
	},
	{
		pattern:  regexp.MustCompile(`\b(?:hemoglobin|hgb|hb)[:\s]+(\d+(?:\.\d+)?)`),
		citation: "Hemoglobin %s",
		bands: []band{
			{12.0, "Anemia: hemoglobin %s g/dL low"},
			{17.6, "Hemoglobin normal at %s g/dL"},
		},
		above: "Hemoglobin elevated at %s g/dL",
	},
	{
		pattern:  regexp.MustCompile(`\bplatelets?[:\s]+(\d+(?:\.\d+)?)`),
		citation: "Platelets %s",
		bands: []band{
			{150, "Thrombocytopenia: platelets %s x10^3/µL low"},
			{451, "Platelets normal at %s x10^3/µL"},
		},
		above: "Thrombocytosis: platelets %s x10^3/µL elevated",
	},
	{
		pattern:  regexp.MustCompile(`\bsodium[:\s]+(\d+(?:\.\d+)?)`),
		citation: "Sodium %s",
		bands: []band{
			{135, "Hyponatremia: sodium %s mmol/L low"},
			{146, "Sodium normal at %s mmol/L"},
		},
		above: "Hypernatremia: sodium %s mmol/L elevated",
	},
	{
		pattern:  regexp.MustCompile(`\bpotassium[:\s]+(\d+(?:\.\d+)?)`),
		citation: "Potassium %s",
		bands: []band{
			{3.5, "Hypokalemia: potassium %s mmol/L low"},
			{5.1, "Potassium normal at %s mmol/L"},
		},
		above: "Hyperkalemia: potassium %s mmol/L elevated",
	},
	{
		pattern:  regexp.MustCompile(`\bcreatinine[:\s]+(\d+(?:\.\d+)?)`),
		citation: "Creatinine %s",
		bands: []band{
			{1.2, "Creatinine normal at %s mg/dL"},
			{2.0, "Renal function borderline: creatinine %s mg/dL"},
		},
		above: "Elevated creatinine %s mg/dL",
	},
}

// conditionRule emits a bullet for a keyword finding unless an earlier bullet
// already mentions term.
type conditionRule struct {
	match    matcher
	term     string
	bullet   string
	citation string
}

var conditionRules = []conditionRule{
	{anyOf("leukocytosis"), "leukocytosis", "Leukocytosis present", "leukocytosis"},
	{anyOf("anemia"), "anemia", "Anemia present", "anemia"},
	{anyOf("thrombocytopenia"), "thrombocytopenia", "Thrombocytopenia present", "thrombocytopenia"},
	{anyOf("hypokal"), "hypokalemia", "Hypokalemia present", "hypokalemia"},
	{anyOf("hypernatremia"), "hypernatremia", "Hypernatremia present", "hypernatremia"},
	{oneOf(anyOf("acute kidney injury"), word("aki")), "kidney", "Acute kidney injury", "acute kidney injury"},
	{anyOf("pneumonia"), "pneumonia", "Pneumonia identified on imaging", "pneumonia"},
	{anyOf("fracture"), "fracture", "Fracture noted", "fracture"},
	{anyOf("effusion"), "effusion", "Pleural effusion present", "effusion"},
	{allOf(anyOf("infarct"), none("myocardial")), "infarct", "Cerebral infarct noted", "infarct"},
	{oneOf(anyOf("myocardial infarction", "heart attack"), word("mi")), "myocardial", "History of myocardial infarction", "myocardial infarction"},
	{anyOf("mass", "nodule"), "nodule", "Mass or nodule detected", "mass/nodule"},
	{anyOf("diabetes"), "diabetes", "Type 2 diabetes mellitus", "diabetes"},
	{anyOf("neuropath"), "neuropathy", "Diabetic neuropathy present", "neuropathy"},
	{oneOf(anyOf("hypertension"), word("htn")), "hypertension", "Hypertension diagnosed", "hypertension"},
	{anyOf("copd", "chronic obstructive"), "copd", "COPD present", "COPD"},
}

// qualitativeRules close out the bullet list with general observations.
var qualitativeRules = []conditionRule{
	{anyOf("elevated", "high"), "elevated", "Elevated values noted", ""},
	{anyOf("low", "decreased"), "low", "Decreased values noted", ""},
}

const normalBullet = "Results within normal limits"

var (
	medicalKeywords = []string{
		"patient", "diagnosis", "lab", "imaging", "x-ray", "ct", "mri",
		"blood", "wbc", "hemoglobin", "glucose", "creatinine", "sodium",
		"clinical", "impression", "findings", "radiology", "test results",
	}
	nonMedicalKeywords = []string{
		"resume", "curriculum vitae", "cv", "work experience", "education",
		"skills", "references", "objective", "career", "employment history",
	}
)

// nonMedicalThreshold is the résumé keyword count at which a document may be rejected.
const nonMedicalThreshold = 2
