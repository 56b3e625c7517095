package errors

import (
	goerrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryValidation, SeverityError, "empty source path")
	want := "validation (error): empty source path"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	wrapped := Wrap(fmt.Errorf("boom"), CategoryStore, SeverityError, "save failed")
	if wrapped.Error() != "store (error): save failed: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	e := Wrap(cause, CategoryInternal, SeverityFatal, "wrapper")
	if !goerrors.Is(e, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestCategoryHelpers(t *testing.T) {
	e := ValidationError("bad input")
	if !IsCategory(e, CategoryValidation) {
		t.Error("IsCategory(validation) = false")
	}
	if IsCategory(e, CategoryStore) {
		t.Error("IsCategory(store) = true")
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Error("plain errors should map to internal")
	}
}

func TestWithContext(t *testing.T) {
	e := New(CategoryRegistry, SeverityError, "assign failed").
		WithContext("document", "a.docx").
		WithContext("proposed", "a")
	if e.Context["document"] != "a.docx" || e.Context["proposed"] != "a" {
		t.Errorf("context = %v", e.Context)
	}
}
