package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/grove/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"f0,f1,label",
		"1.5,2.0,0",
		"3.0,4.5,1",
		"0.5,1.0,0",
	}, "\n")

	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ds.Len())
	}
	if ds.NumFeatures() != 2 {
		t.Errorf("NumFeatures() = %d, want 2", ds.NumFeatures())
	}
	if got := ds.X.At(1, 1); got != 4.5 {
		t.Errorf("X[1][1] = %v, want 4.5", got)
	}
	if got := ds.Y.At(1, 0); got != 1 {
		t.Errorf("Y[1] = %v, want 1", got)
	}
	if ds.FeatureNames[0] != "f0" || ds.FeatureNames[1] != "f1" {
		t.Errorf("FeatureNames = %v", ds.FeatureNames)
	}
}

func TestReadCSV_LabelColumnPosition(t *testing.T) {
	// The label column may appear anywhere in the header.
	input := "a,label,b\n1,0,2\n3,1,4\n"

	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if ds.X.At(0, 0) != 1 || ds.X.At(0, 1) != 2 {
		t.Errorf("features not extracted around label column: %v %v",
			ds.X.At(0, 0), ds.X.At(0, 1))
	}
	if ds.Y.At(1, 0) != 1 {
		t.Errorf("Y[1] = %v, want 1", ds.Y.At(1, 0))
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
	}{
		{name: "empty stream", input: "", sentinel: errors.ErrEmptyData},
		{name: "no label column", input: "a,b\n1,2\n", sentinel: errors.ErrMissingLabel},
		{name: "header only", input: "a,label\n", sentinel: errors.ErrEmptyData},
		{name: "non-numeric field", input: "a,label\nx,0\n"},
		{name: "non-binary label", input: "a,label\n1,2\n"},
		{name: "duplicate label column", input: "label,label\n0,1\n"},
		{name: "only label column", input: "label\n0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadCSV() should fail")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestLoad_LocalSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "f0,label\n0.1,0\n0.9,1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(context.Background(), LocalSource{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), LocalSource{Path: filepath.Join(t.TempDir(), "absent.csv")})
	if err == nil {
		t.Error("Load() on a missing file should fail")
	}
}

func TestBlobSource_String(t *testing.T) {
	src := BlobSource{
		AccountURL: "https://acct.blob.core.windows.net/",
		Container:  "training",
		Blob:       "preprocessed.csv",
	}
	want := "https://acct.blob.core.windows.net/training/preprocessed.csv"
	if src.String() != want {
		t.Errorf("String() = %q, want %q", src.String(), want)
	}
}
