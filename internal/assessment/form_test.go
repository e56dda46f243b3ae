package assessment

import (
	"math"
	"testing"
)

func validDiabetesForm() *Form {
	f := NewForm()
	f.SetField("age", "35")
	f.SetField("bmi", "24.8")
	f.SetField("glucose", "95")
	f.SetField("insulin", "8.5")
	f.SetField("blood_pressure", "120/80")
	return f
}

// TestBuildPayload_DiabetesScenario checks the exact payload built for
// the documented reference submission.
func TestBuildPayload_DiabetesScenario(t *testing.T) {
	f := validDiabetesForm()

	p, err := f.BuildPayload(KindDiabetes)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v, want nil", err)
	}

	want := map[string]float64{
		"Age":                      35,
		"BMI":                      24.8,
		"BloodPressure":            80,
		"Glucose":                  95,
		"Insulin":                  8.5,
		"Pregnancies":              2,
		"SkinThickness":            20,
		"DiabetesPedigreeFunction": 0.5,
	}
	got := p.Fields()
	if len(got) != len(want) {
		t.Fatalf("payload has %d fields, want %d", len(got), len(want))
	}
	for name, wantV := range want {
		if got[name] != wantV {
			t.Errorf("field %s = %v, want %v", name, got[name], wantV)
		}
	}
}

// TestBuildPayload_ValidInputIsFinite checks that a fully valid form
// never produces NaN or Inf.
func TestBuildPayload_ValidInputIsFinite(t *testing.T) {
	f := validDiabetesForm()

	p, err := f.BuildPayload(KindDiabetes)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v, want nil", err)
	}

	for name, v := range p.Fields() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("field %s = %v, want finite", name, v)
		}
	}
}

// TestMissing_BlocksSubmission checks that presence validation flags
// absent and blank required fields.
func TestMissing_BlocksSubmission(t *testing.T) {
	f := validDiabetesForm()
	if missing := f.Missing(KindDiabetes); len(missing) != 0 {
		t.Fatalf("Missing() = %v, want empty", missing)
	}

	f.SetField("glucose", "   ")
	missing := f.Missing(KindDiabetes)
	if len(missing) != 1 || missing[0] != "glucose" {
		t.Errorf("Missing() = %v, want [glucose]", missing)
	}

	empty := NewForm()
	if got := len(empty.Missing(KindHeart)); got != 13 {
		t.Errorf("Missing() on empty heart form = %d fields, want 13", got)
	}
}

// TestBuildPayload_MalformedNumericYieldsNaN checks the no-throw
// coercion policy: present but unparseable values become NaN.
func TestBuildPayload_MalformedNumericYieldsNaN(t *testing.T) {
	f := validDiabetesForm()
	f.SetField("bmi", "abc")

	p, err := f.BuildPayload(KindDiabetes)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v, want nil", err)
	}
	if !math.IsNaN(p.Fields()["BMI"]) {
		t.Errorf("BMI = %v, want NaN", p.Fields()["BMI"])
	}
}

func TestBuildPayload_BloodPressure(t *testing.T) {
	testCases := []struct {
		raw  string
		want float64
	}{
		{"120/80", 80},
		{"130/85", 85},
		{"120", 80},    // no diastolic part
		{"120/", 80},   // empty diastolic part
		{"120/abc", 0}, // want NaN, checked below
	}

	for _, tc := range testCases {
		f := validDiabetesForm()
		f.SetField("blood_pressure", tc.raw)
		p, err := f.BuildPayload(KindDiabetes)
		if err != nil {
			t.Fatalf("BuildPayload(%q) error = %v", tc.raw, err)
		}
		got := p.Fields()["BloodPressure"]
		if tc.raw == "120/abc" {
			if !math.IsNaN(got) {
				t.Errorf("BloodPressure(%q) = %v, want NaN", tc.raw, got)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("BloodPressure(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestBuildPayload_Heart(t *testing.T) {
	f := NewForm()
	values := map[string]string{
		"age": "54", "sex": "1", "cp": "0", "trestbps": "130",
		"chol": "246", "fbs": "0", "restecg": "1", "thalch": "150",
		"exang": "0", "oldpeak": "1.4", "slope": "1", "ca": "0", "thal": "2",
	}
	for name, v := range values {
		f.SetField(name, v)
	}

	p, err := f.BuildPayload(KindHeart)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v, want nil", err)
	}
	fields := p.Fields()
	if fields["age"] != 54 || fields["oldpeak"] != 1.4 || fields["thal"] != 2 {
		t.Errorf("heart payload mismatch: %v", fields)
	}
	if len(fields) != 13 {
		t.Errorf("heart payload has %d fields, want 13", len(fields))
	}
}

// TestDocument_NaNBecomesNull checks the JSON-safe rendering used on
// the wire and in stored inputs.
func TestDocument_NaNBecomesNull(t *testing.T) {
	f := validDiabetesForm()
	f.SetField("insulin", "oops")

	p, _ := f.BuildPayload(KindDiabetes)
	doc := Document(p)

	if doc["Insulin"] != nil {
		t.Errorf("Insulin = %v, want nil", doc["Insulin"])
	}
	if doc["Age"] != float64(35) {
		t.Errorf("Age = %v, want 35", doc["Age"])
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("diabetes"); err != nil {
		t.Errorf("ParseKind(diabetes) error = %v", err)
	}
	if _, err := ParseKind("heart"); err != nil {
		t.Errorf("ParseKind(heart) error = %v", err)
	}
	if _, err := ParseKind("hypertension"); err == nil {
		t.Error("ParseKind(hypertension) error = nil, want error")
	}
}
