package model

import (
	"math/rand"
	"testing"
)

var allSeverities = []Severity{SeverityUnknown, SeveritySuccess, SeverityWarning, SeverityFailure}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityUnknown < SeveritySuccess && SeveritySuccess < SeverityWarning && SeverityWarning < SeverityFailure) {
		t.Fatalf("severity order broken: %d %d %d %d",
			SeverityUnknown, SeveritySuccess, SeverityWarning, SeverityFailure)
	}
}

func TestMaxSeverityCommutativeAssociative(t *testing.T) {
	for _, a := range allSeverities {
		for _, b := range allSeverities {
			if MaxSeverity(a, b) != MaxSeverity(b, a) {
				t.Errorf("MaxSeverity(%v,%v) not commutative", a, b)
			}
			for _, c := range allSeverities {
				left := MaxSeverity(MaxSeverity(a, b), c)
				right := MaxSeverity(a, MaxSeverity(b, c))
				if left != right {
					t.Errorf("MaxSeverity not associative for %v,%v,%v", a, b, c)
				}
			}
		}
	}
}

func TestMaxSeverityRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(10)
		max := SeverityUnknown
		acc := SeverityUnknown
		for j := 0; j < n; j++ {
			s := allSeverities[rng.Intn(len(allSeverities))]
			acc = MaxSeverity(acc, s)
			if s > max {
				max = s
			}
		}
		if acc != max {
			t.Fatalf("fold mismatch: got %v want %v", acc, max)
		}
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	cases := map[string]CollisionPolicy{
		"Replace":        CollisionReplace,
		"replace":        CollisionReplace,
		"REPLACEANDWARN": CollisionReplaceAndWarn,
		"ReplaceAndWarn": CollisionReplaceAndWarn,
		"warn":           CollisionWarn,
		"Fail":           CollisionFail,
		" fail ":         CollisionFail,
	}
	for in, want := range cases {
		got, err := ParseCollisionPolicy(in)
		if err != nil {
			t.Errorf("ParseCollisionPolicy(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCollisionPolicy(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseCollisionPolicy("overwrite"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestCoerceValue(t *testing.T) {
	v, err := CoerceValue(KindBool, "True")
	if err != nil || !v.Bool {
		t.Fatalf("bool coercion: %+v, %v", v, err)
	}
	v, err = CoerceValue(KindInt, " 12 ")
	if err != nil || v.Int != 12 {
		t.Fatalf("int coercion: %+v, %v", v, err)
	}
	v, err = CoerceValue(KindList, "a, b ,,c")
	if err != nil || len(v.List) != 3 || v.List[1] != "b" {
		t.Fatalf("list coercion: %+v, %v", v, err)
	}
	if _, err := CoerceValue(KindInt, "twelve"); err == nil {
		t.Error("expected coercion error for non-integer")
	}
	if _, err := CoerceValue(KindBool, "maybe"); err == nil {
		t.Error("expected coercion error for non-boolean")
	}
}

func TestValueRenderRoundTrip(t *testing.T) {
	for _, v := range []Value{
		StringValue("x y"),
		BoolValue(true),
		IntValue(-3),
		ListValue([]string{"a", "b"}),
	} {
		got, err := CoerceValue(v.Kind, v.Render())
		if err != nil {
			t.Fatalf("re-coerce %v: %v", v, err)
		}
		if got.Render() != v.Render() {
			t.Errorf("render round trip: %q != %q", got.Render(), v.Render())
		}
	}
}

func TestParamSpecAllowsValue(t *testing.T) {
	ps := ParamSpec{Name: "Format", Enum: []string{"geojson", "csv"}}
	if !ps.AllowsValue("GeoJSON") {
		t.Error("enum match should be case-insensitive")
	}
	if ps.AllowsValue("shapefile") {
		t.Error("value outside enum accepted")
	}
	open := ParamSpec{Name: "Path"}
	if !open.AllowsValue("anything") {
		t.Error("spec without enum must accept any value")
	}
}
