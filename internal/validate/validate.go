// Package validate checks the contract of already-produced results: a
// factory given an invalid argument must return no object and an error
// whose description names the argument.
package validate

import (
	"reflect"
	"strings"

	"github.com/roach88/adalharness/internal/authmodel"
	"github.com/roach88/adalharness/internal/report"
)

// Describer is implemented by errors that carry a description separate
// from their Error() text. authmodel.Error is one.
type Describer interface {
	Description() string
}

// Description returns err's description, falling back to Error().
func Description(err error) string {
	if err == nil {
		return ""
	}
	if d, ok := err.(Describer); ok {
		return d.Description()
	}
	return err.Error()
}

// FactoryRejectsInvalidArgument fails with KindInvalidFactoryResult unless
// obj is absent, err is present, and err's description contains argument.
func FactoryRejectsInvalidArgument(t report.TB, site report.CallSite, argument string, obj any, err error) bool {
	t.Helper()

	ok := true
	if !isAbsent(obj) {
		report.Reportf(t, report.KindInvalidFactoryResult, site,
			"factory returned an object (%T) for invalid argument %q", obj, argument)
		ok = false
	}
	if !errorNamesArgument(t, site, argument, err) {
		ok = false
	}
	return ok
}

// InvalidArgument fails with KindInvalidFactoryResult unless err is present
// and names argument. When err is an *authmodel.Error its code must be
// CodeInvalidArgument.
func InvalidArgument(t report.TB, site report.CallSite, argument string, err error) bool {
	t.Helper()

	if !errorNamesArgument(t, site, argument, err) {
		return false
	}
	if code, isAuth := authmodel.CodeOf(err); isAuth && code != authmodel.CodeInvalidArgument {
		report.Reportf(t, report.KindInvalidFactoryResult, site,
			"error for argument %q has code %s, expected %s", argument, code, authmodel.CodeInvalidArgument)
		return false
	}
	return true
}

// ValidText fails with KindAssertionMismatch when text is empty or only
// whitespace. message describes what the text is.
func ValidText(t report.TB, site report.CallSite, text string, message string) bool {
	t.Helper()

	if strings.TrimSpace(text) != "" {
		return true
	}
	report.Reportf(t, report.KindAssertionMismatch, site, "%s: expected non-blank text, got %q", message, text)
	return false
}

func errorNamesArgument(t report.TB, site report.CallSite, argument string, err error) bool {
	t.Helper()

	if isAbsent(err) {
		report.Reportf(t, report.KindInvalidFactoryResult, site,
			"no error returned for invalid argument %q", argument)
		return false
	}
	desc := Description(err)
	if !strings.Contains(desc, argument) {
		report.Reportf(t, report.KindInvalidFactoryResult, site,
			"error description %q does not mention argument %q", desc, argument)
		return false
	}
	return true
}

// isAbsent treats typed nil pointers, maps, slices, funcs, channels and
// interfaces the same as an untyped nil.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
