package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")
	if err == nil {
		t.Fatal("NewNotFittedError() returned nil")
	}

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatal("error is not a *NotFittedError")
	}
	if nfe.ModelName != "RandomForestClassifier" {
		t.Errorf("ModelName = %q, want %q", nfe.ModelName, "RandomForestClassifier")
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("Error() = %q, want mention of not fitted", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("AUC", 10, 7, 0)

	var de *DimensionError
	if !As(err, &de) {
		t.Fatal("error is not a *DimensionError")
	}
	if de.Expected != 10 || de.Got != 7 {
		t.Errorf("Expected/Got = %d/%d, want 10/7", de.Expected, de.Got)
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("Error() = %q, want axis name 'rows'", err.Error())
	}
}

func TestUndefinedMetricWarning(t *testing.T) {
	w := NewUndefinedMetricWarning("precision", "no predicted positives", 0.0)
	if !strings.Contains(w.Error(), "ill-defined") {
		t.Errorf("Error() = %q, want ill-defined message", w.Error())
	}
}

func TestWarnHandler(t *testing.T) {
	warningMutex.Lock()
	prev := warningHandler
	warningMutex.Unlock()
	defer SetWarningHandler(prev)

	var captured error
	SetWarningHandler(func(w error) { captured = w })

	warning := NewUndefinedMetricWarning("recall", "no actual positives", 0.0)
	Warn(warning)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	if captured != warning {
		t.Errorf("captured %v, want %v", captured, warning)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	base := New("blob unreachable")
	wrapped := Wrap(base, "load dataset")

	if !Is(wrapped, base) {
		t.Error("wrapped error does not match its cause")
	}
	if !strings.Contains(wrapped.Error(), "blob unreachable") {
		t.Errorf("Error() = %q, cause message lost", wrapped.Error())
	}
}
