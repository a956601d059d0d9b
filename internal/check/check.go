// Package check evaluates named runtime preconditions against the shared
// workflow context, with caller-selected escalation. The condition set is a
// closed enum: commands dispatch on a constant, never on a free-form string,
// so an unrecognized condition is a defect in the calling command rather than
// a user data error.
package check

import (
	"fmt"
	"os"
	"strings"

	"geoflow/internal/geo"
	"geoflow/internal/model"
	"geoflow/internal/property"
	"geoflow/internal/registry"
)

// Condition names one precondition predicate.
type Condition int

const (
	// CondFileExists: the path exists and is a regular file.
	CondFileExists Condition = iota
	// CondDirExists: the path exists and is a directory.
	CondDirExists
	// CondMemberOfSet: the value is one of the allowed set.
	CondMemberOfSet
	// CondLayerExists: the referenced layer ID is registered.
	CondLayerExists
	// CondTableExists: the referenced table ID is registered.
	CondTableExists
	// CondDataStoreExists: the referenced datastore ID is registered.
	CondDataStoreExists
	// CondLayerIDFree: the layer ID is not registered yet. This is the
	// input-family uniqueness predicate; output collisions go through the
	// registry's collision policy instead.
	CondLayerIDFree
	// CondSameCRS: the two referenced layers share a coordinate system.
	CondSameCRS
	// CondGeometryKindIn: the referenced layer's geometry kind is in the
	// allowed set.
	CondGeometryKindIn
	// CondValidCRSCode: the value parses as an authority:code CRS reference.
	CondValidCRSCode
)

func (c Condition) String() string {
	names := []string{
		"FileExists", "DirExists", "MemberOfSet", "LayerExists", "TableExists",
		"DataStoreExists", "LayerIDFree", "SameCRS", "GeometryKindIn", "ValidCRSCode",
	}
	if int(c) < 0 || int(c) >= len(names) {
		return fmt.Sprintf("Condition(%d)", int(c))
	}
	return names[c]
}

// Policy selects how a failed predicate escalates.
type Policy int

const (
	// PolicyFail: log a failure, do not run the effect.
	PolicyFail Policy = iota
	// PolicyWarn: log a warning, run the effect anyway.
	PolicyWarn
	// PolicyWarnSkip: log a warning, do not run the effect.
	PolicyWarnSkip
)

func (p Policy) String() string {
	switch p {
	case PolicyFail:
		return "fail"
	case PolicyWarn:
		return "warn"
	case PolicyWarnSkip:
		return "warn-skip"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Env is the slice of the workflow context predicates read. Predicates are
// pure over their input and this environment.
type Env struct {
	Layers     *registry.Registry[geo.Layer]
	Tables     *registry.Registry[geo.Table]
	DataStores *registry.Registry[geo.DataStore]
	Props      *property.Store
}

// Input carries a predicate's operands. Value is the primary operand; Set
// and Other serve the predicates that need them.
type Input struct {
	Value string
	// Set lists allowed values for CondMemberOfSet and CondGeometryKindIn.
	Set []string
	// Other is the second layer ID for CondSameCRS.
	Other string
}

// Result is the dispatcher's verdict. Severity and Blocking are derived from
// the policy so the caller can log and short-circuit without re-deriving the
// escalation rules.
type Result struct {
	Passed         bool
	Blocking       bool
	Severity       model.Severity
	Message        string
	Recommendation string
}

// Evaluate runs one predicate and maps failure through the policy. A
// condition value outside the enum is reported as a blocking failure
// regardless of policy, with a message that points at the command defect.
func Evaluate(cond Condition, in Input, env *Env, policy Policy) Result {
	passed, msg, rec, known := dispatch(cond, in, env)
	if !known {
		return Result{
			Passed:         false,
			Blocking:       true,
			Severity:       model.SeverityFailure,
			Message:        fmt.Sprintf("internal defect: unrecognized check condition %s", cond),
			Recommendation: "this is a bug in the command implementation, not in the workflow; please report it",
		}
	}
	if passed {
		return Result{Passed: true, Severity: model.SeveritySuccess}
	}

	res := Result{Message: msg, Recommendation: rec}
	switch policy {
	case PolicyWarn:
		res.Severity = model.SeverityWarning
	case PolicyWarnSkip:
		res.Severity = model.SeverityWarning
		res.Blocking = true
	default:
		res.Severity = model.SeverityFailure
		res.Blocking = true
	}
	return res
}

func dispatch(cond Condition, in Input, env *Env) (passed bool, msg, rec string, known bool) {
	switch cond {
	case CondFileExists:
		info, err := os.Stat(in.Value)
		if err == nil && info.Mode().IsRegular() {
			return true, "", "", true
		}
		return false, fmt.Sprintf("file %q does not exist or is not a regular file", in.Value),
			"check the path and any properties it is built from", true

	case CondDirExists:
		info, err := os.Stat(in.Value)
		if err == nil && info.IsDir() {
			return true, "", "", true
		}
		return false, fmt.Sprintf("directory %q does not exist", in.Value),
			"create the directory or correct the path", true

	case CondMemberOfSet:
		for _, allowed := range in.Set {
			if strings.EqualFold(allowed, in.Value) {
				return true, "", "", true
			}
		}
		return false, fmt.Sprintf("value %q is not one of the allowed values (%s)", in.Value, strings.Join(in.Set, ", ")),
			"use one of the listed values", true

	case CondLayerExists:
		if env.Layers.Exists(in.Value) {
			return true, "", "", true
		}
		return false, fmt.Sprintf("no layer registered under id %q", in.Value),
			"register the layer with a read or derive command before referencing it", true

	case CondTableExists:
		if env.Tables.Exists(in.Value) {
			return true, "", "", true
		}
		return false, fmt.Sprintf("no table registered under id %q", in.Value),
			"register the table with a read command before referencing it", true

	case CondDataStoreExists:
		if env.DataStores.Exists(in.Value) {
			return true, "", "", true
		}
		return false, fmt.Sprintf("no datastore registered under id %q", in.Value),
			"register the datastore before referencing it", true

	case CondLayerIDFree:
		if !env.Layers.Exists(in.Value) {
			return true, "", "", true
		}
		return false, fmt.Sprintf("layer id %q is already registered", in.Value),
			"pick a different id or remove the existing layer first", true

	case CondSameCRS:
		a, okA := env.Layers.Get(in.Value)
		b, okB := env.Layers.Get(in.Other)
		if !okA || !okB {
			return false, fmt.Sprintf("cannot compare coordinate systems: layer %q or %q is not registered", in.Value, in.Other),
				"register both layers before comparing them", true
		}
		if a.CRS() == b.CRS() {
			return true, "", "", true
		}
		return false, fmt.Sprintf("layers %q (%s) and %q (%s) use different coordinate systems", in.Value, a.CRS(), in.Other, b.CRS()),
			"reproject one of the layers to the other's coordinate system", true

	case CondGeometryKindIn:
		l, ok := env.Layers.Get(in.Value)
		if !ok {
			return false, fmt.Sprintf("no layer registered under id %q", in.Value),
				"register the layer before checking its geometry kind", true
		}
		for _, allowed := range in.Set {
			if strings.EqualFold(allowed, string(l.GeometryKind())) {
				return true, "", "", true
			}
		}
		return false, fmt.Sprintf("layer %q has geometry kind %s, expected one of %s", in.Value, l.GeometryKind(), strings.Join(in.Set, ", ")),
			"use a layer with a suitable geometry kind", true

	case CondValidCRSCode:
		if geo.ValidCRSRef(in.Value) {
			return true, "", "", true
		}
		return false, fmt.Sprintf("%q is not a valid coordinate system reference", in.Value),
			"use an authority:code reference such as EPSG:4326", true

	default:
		return false, "", "", false
	}
}
