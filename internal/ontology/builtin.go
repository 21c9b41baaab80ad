package ontology

// EssentialCapabilities is the fixed 6-code set used for regional risk
// scoring. Order matters for reproducible explanations.
var EssentialCapabilities = []string{
	"EMERGENCY_CARE",
	"SURGERY_GENERAL",
	"MATERNITY_CARE",
	"IMAGING_XRAY",
	"LAB_BASIC",
	"PHARMACY",
}

// builtinCapabilities is the default ontology, used when no ontology file is
// configured.
var builtinCapabilities = []Capability{
	{
		Code:        "EMERGENCY_CARE",
		DisplayName: "Emergency care",
		Synonyms:    []string{"emergency room", "ER", "A&E", "casualty", "emergency department", "urgent care"},
	},
	{
		Code:        "SURGERY_GENERAL",
		DisplayName: "General surgery",
		Synonyms:    []string{"operating theatre", "operating room", "surgical services", "surgery"},
	},
	{
		Code:        "MATERNITY_CARE",
		DisplayName: "Maternity care",
		Synonyms:    []string{"obstetrics", "delivery ward", "labor and delivery", "maternity ward", "birthing center"},
	},
	{
		Code:        "IMAGING_XRAY",
		DisplayName: "X-ray imaging",
		Synonyms:    []string{"x-ray", "xray", "radiography", "plain film imaging"},
	},
	{
		Code:        "IMAGING_CT",
		DisplayName: "CT imaging",
		Synonyms:    []string{"CT scan", "CT scanner", "computed tomography", "CAT scan"},
	},
	{
		Code:        "IMAGING_MRI",
		DisplayName: "MRI imaging",
		Synonyms:    []string{"MRI", "MRI scanner", "magnetic resonance imaging"},
	},
	{
		Code:        "IMAGING_ULTRASOUND",
		DisplayName: "Ultrasound imaging",
		Synonyms:    []string{"ultrasound", "sonography", "echography"},
	},
	{
		Code:        "LAB_BASIC",
		DisplayName: "Basic laboratory",
		Synonyms:    []string{"laboratory", "lab services", "clinical lab", "blood tests", "diagnostics lab"},
	},
	{
		Code:        "PHARMACY",
		DisplayName: "Pharmacy",
		Synonyms:    []string{"dispensary", "pharmacy services", "medication dispensing"},
	},
	{
		Code:        "ONC_GENERAL",
		DisplayName: "General oncology",
		Synonyms:    []string{"oncology", "cancer care", "oncology services", "cancer treatment"},
		// Oncology claims are routinely evidenced (and negated) through the
		// delivery modality rather than the word "oncology".
		ScanTerms: []string{"chemotherapy", "chemo", "chemotherapy delivery", "radiotherapy", "radiation therapy", "infusion therapy"},
	},
	{
		Code:        "ONC_CHEMOTHERAPY",
		DisplayName: "Chemotherapy",
		Synonyms:    []string{"chemotherapy", "chemo", "chemotherapy delivery", "infusion therapy"},
	},
	{
		Code:        "ONC_RADIOTHERAPY",
		DisplayName: "Radiotherapy",
		Synonyms:    []string{"radiotherapy", "radiation therapy", "radiation oncology"},
	},
	{
		Code:        "SPECIALIST_RADIOLOGY",
		DisplayName: "Radiology specialists",
		Synonyms:    []string{"radiologist", "radiologists", "radiology staff", "imaging specialists"},
	},
	{
		Code:        "SPECIALIST_ONCOLOGY",
		DisplayName: "Oncology specialists",
		Synonyms:    []string{"oncologist", "oncologists", "cancer specialists"},
	},
	{
		Code:        "SPECIALIST_ANESTHESIA",
		DisplayName: "Anesthesia specialists",
		Synonyms:    []string{"anesthesiologist", "anesthetist", "anesthesia staff"},
	},
	{
		Code:        "ICU",
		DisplayName: "Intensive care unit",
		Synonyms:    []string{"intensive care", "critical care unit", "ICU beds"},
	},
	{
		Code:        "DIALYSIS",
		DisplayName: "Dialysis",
		Synonyms:    []string{"hemodialysis", "renal dialysis", "dialysis unit"},
	},
	{
		Code:        "BLOOD_BANK",
		DisplayName: "Blood bank",
		Synonyms:    []string{"blood transfusion", "transfusion services", "blood storage"},
	},
}

// builtinPrerequisites maps a capability to the capabilities a facility is
// expected to already hold before credibly offering it.
var builtinPrerequisites = map[string][]string{
	"IMAGING_CT":       {"IMAGING_XRAY", "SPECIALIST_RADIOLOGY"},
	"IMAGING_MRI":      {"IMAGING_XRAY", "SPECIALIST_RADIOLOGY"},
	"ONC_GENERAL":      {"LAB_BASIC", "PHARMACY", "SPECIALIST_ONCOLOGY"},
	"ONC_CHEMOTHERAPY": {"ONC_GENERAL", "PHARMACY", "LAB_BASIC"},
	"ONC_RADIOTHERAPY": {"ONC_GENERAL", "SPECIALIST_RADIOLOGY"},
	"SURGERY_GENERAL":  {"SPECIALIST_ANESTHESIA", "LAB_BASIC"},
	"ICU":              {"LAB_BASIC", "PHARMACY"},
	"DIALYSIS":         {"LAB_BASIC"},
	"MATERNITY_CARE":   {"LAB_BASIC"},
	"BLOOD_BANK":       {"LAB_BASIC"},
}
