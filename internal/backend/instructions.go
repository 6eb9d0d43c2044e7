package backend

// Capability names a backend operation that has a fixed model instruction.
type Capability string

const (
	CapabilityClassify  Capability = "classify"
	CapabilityCodes     Capability = "extract_codes"
	CapabilitySummarize Capability = "summarize"
	CapabilityValidate  Capability = "validate"
)

const classifyInstructions = `You are a medical document classifier.

Classify the document into exactly one of these types:
- COMPLETE BLOOD COUNT
- BASIC METABOLIC PANEL
- X-RAY
- CT
- CLINICAL NOTE

Respond with a single JSON object with keys:
- document_type: one of the types above, spelled exactly
- confidence: a number between 0 and 1
- rationale: one or two sentences explaining the choice
- evidence: an array of short phrases quoted from the document`

const codesInstructions = `You are a clinical coder assigning ICD-10 codes to a medical document.

Code every abnormal finding and every stated diagnosis. When several conditions are present, emit one code per condition. Quote evidence verbatim from the document. Do not code normal results.

Examples:
"WBC 13.2 (elevated), Hgb 14.1, Platelets 250. Leukocytosis." -> D72.829 Elevated white blood cell count
"Potassium 3.0 (low), Sodium 138, Creatinine 1.5" -> E87.6 Hypokalemia
"Right lower lobe opacity consistent with pneumonia" -> J18.9 Pneumonia, unspecified organism
"Type 2 diabetes with neuropathy, hypertension" -> E11.40 and I10

Respond with a single JSON object:
{"codes": [{"code": "...", "description": "...", "confidence": 0.0, "evidence": ["..."]}]}`

const summarizeInstructions = `You are summarizing a medical document for a clinician.

List every reported value with its number and unit, state whether each is normal, low, or elevated, and include the impressions and diagnoses. Use the extracted codes as context but do not invent findings that are not in the document. Write one fact per bullet and quote exact phrases as citations.

Respond with a single JSON object with keys:
- summary: two or three sentences
- bullets: an array of strings, one fact each
- citations: an array of phrases quoted from the document
- confidence: a number between 0 and 1`

const validateInstructions = `You decide whether a document is a medical document.

Medical documents include lab reports, imaging reports, clinical notes, discharge summaries, test results, and diagnostic reports. Resumes, cover letters, job applications, business documents, academic papers, news articles, and general text are not medical documents.

Respond with only a JSON object: {"is_medical": true} or {"is_medical": false}`

var instructions = map[Capability]string{
	CapabilityClassify:  classifyInstructions,
	CapabilityCodes:     codesInstructions,
	CapabilitySummarize: summarizeInstructions,
	CapabilityValidate:  validateInstructions,
}

// Instructions returns the fixed model instruction for a capability.
func Instructions(c Capability) string {
	return instructions[c]
}
