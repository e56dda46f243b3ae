package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is one of the supported prediction categories.
type Kind string

const (
	KindDiabetes Kind = "diabetes"
	KindHeart    Kind = "heart"
)

// ParseKind maps a path segment to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDiabetes:
		return KindDiabetes, nil
	case KindHeart:
		return KindHeart, nil
	}
	return "", fmt.Errorf("unknown assessment kind %q", s)
}

// Payload is the wire form of one assessment submission. Fields returns
// the exact key/value map serialized to the prediction service; values
// may be NaN when the raw input did not parse.
type Payload interface {
	Kind() Kind
	Fields() map[string]float64
}

// Fixed values the form does not collect for the diabetes model.
const (
	defaultPregnancies      = 2
	defaultSkinThickness    = 20
	defaultPedigreeFunction = 0.5
	defaultDiastolicBP      = 80
)

// requiredFields lists the raw form fields each kind needs before a
// payload may be built.
var requiredFields = map[Kind][]string{
	KindDiabetes: {"age", "bmi", "glucose", "insulin", "blood_pressure"},
	KindHeart: {
		"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalch", "exang", "oldpeak", "slope", "ca", "thal",
	},
}

// Form collects raw user-entered field values. SetField accepts any
// string; coercion happens only in BuildPayload.
type Form struct {
	fields map[string]string
}

func NewForm() *Form {
	return &Form{fields: make(map[string]string)}
}

// SetField stores a raw value under name, replacing any previous value.
func (f *Form) SetField(name, value string) {
	f.fields[name] = value
}

// Missing returns the required fields of kind that are absent or blank.
// Submission must be blocked while this is non-empty.
func (f *Form) Missing(kind Kind) []string {
	var missing []string
	for _, name := range requiredFields[kind] {
		if strings.TrimSpace(f.fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// BuildPayload coerces the raw values into the payload variant for kind.
// Unparseable numeric input yields NaN rather than an error; the remote
// service is the final arbiter of validity.
func (f *Form) BuildPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindDiabetes:
		return DiabetesPayload{
			Age:                      f.intField("age"),
			BMI:                      f.floatField("bmi"),
			BloodPressure:            f.diastolicField("blood_pressure"),
			Glucose:                  f.floatField("glucose"),
			Insulin:                  f.floatField("insulin"),
			Pregnancies:              defaultPregnancies,
			SkinThickness:            defaultSkinThickness,
			DiabetesPedigreeFunction: defaultPedigreeFunction,
		}, nil
	case KindHeart:
		return HeartPayload{
			Age:      f.intField("age"),
			Sex:      f.intField("sex"),
			CP:       f.intField("cp"),
			Trestbps: f.intField("trestbps"),
			Chol:     f.intField("chol"),
			FBS:      f.intField("fbs"),
			Restecg:  f.intField("restecg"),
			Thalch:   f.intField("thalch"),
			Exang:    f.intField("exang"),
			Oldpeak:  f.floatField("oldpeak"),
			Slope:    f.intField("slope"),
			CA:       f.intField("ca"),
			Thal:     f.intField("thal"),
		}, nil
	}
	return nil, fmt.Errorf("unknown assessment kind %q", kind)
}

// floatField parses a continuous value, NaN on failure.
func (f *Form) floatField(name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.fields[name]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// intField parses a categorical/count value, truncating any fractional
// part, NaN on failure.
func (f *Form) intField(name string) float64 {
	v := f.floatField(name)
	if math.IsNaN(v) {
		return v
	}
	return math.Trunc(v)
}

// diastolicField extracts the diastolic part of a "systolic/diastolic"
// reading. A reading without a diastolic part falls back to 80.
func (f *Form) diastolicField(name string) float64 {
	raw := strings.TrimSpace(f.fields[name])
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return defaultDiastolicBP
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return math.NaN()
	}
	return math.Trunc(v)
}

// DiabetesPayload matches the feature set of the diabetes model.
type DiabetesPayload struct {
	Pregnancies              float64
	Glucose                  float64
	BloodPressure            float64
	SkinThickness            float64
	Insulin                  float64
	BMI                      float64
	DiabetesPedigreeFunction float64
	Age                      float64
}

func (DiabetesPayload) Kind() Kind { return KindDiabetes }

func (p DiabetesPayload) Fields() map[string]float64 {
	return map[string]float64{
		"Pregnancies":              p.Pregnancies,
		"Glucose":                  p.Glucose,
		"BloodPressure":            p.BloodPressure,
		"SkinThickness":            p.SkinThickness,
		"Insulin":                  p.Insulin,
		"BMI":                      p.BMI,
		"DiabetesPedigreeFunction": p.DiabetesPedigreeFunction,
		"Age":                      p.Age,
	}
}

// HeartPayload matches the feature set of the heart disease model
// (UCI heart dataset column names).
type HeartPayload struct {
	Age      float64
	Sex      float64
	CP       float64 // chest pain type
	Trestbps float64 // resting blood pressure
	Chol     float64 // serum cholesterol
	FBS      float64 // fasting blood sugar > 120 mg/dl
	Restecg  float64 // resting ECG result
	Thalch   float64 // max heart rate achieved
	Exang    float64 // exercise induced angina
	Oldpeak  float64 // ST depression
	Slope    float64 // slope of peak exercise ST
	CA       float64 // major vessels colored
	Thal     float64 // thalassemia type
}

func (HeartPayload) Kind() Kind { return KindHeart }

func (p HeartPayload) Fields() map[string]float64 {
	return map[string]float64{
		"age":      p.Age,
		"sex":      p.Sex,
		"cp":       p.CP,
		"trestbps": p.Trestbps,
		"chol":     p.Chol,
		"fbs":      p.FBS,
		"restecg":  p.Restecg,
		"thalch":   p.Thalch,
		"exang":    p.Exang,
		"oldpeak":  p.Oldpeak,
		"slope":    p.Slope,
		"ca":       p.CA,
		"thal":     p.Thal,
	}
}

// Document renders a payload as a JSON-safe map. JSON has no NaN, so
// unparseable values are forwarded as null, which is what the remote
// service receives and judges.
func Document(p Payload) map[string]interface{} {
	doc := make(map[string]interface{}, len(p.Fields()))
	for k, v := range p.Fields() {
		if math.IsNaN(v) {
			doc[k] = nil
			continue
		}
		doc[k] = v
	}
	return doc
}
