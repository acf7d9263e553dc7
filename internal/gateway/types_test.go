package gateway

import (
	"reflect"
	"testing"
)

func TestParameters_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input Parameters
		want  Parameters
	}{
		{
			"within range",
			Parameters{UpSotCount: 15, Sensitivity: 0.7},
			Parameters{UpSotCount: 15, Sensitivity: 0.7},
		},
		{
			"count above max",
			Parameters{UpSotCount: 50, Sensitivity: 0.5},
			Parameters{UpSotCount: 30, Sensitivity: 0.5},
		},
		{
			"count below min",
			Parameters{UpSotCount: -5, Sensitivity: 0.5},
			Parameters{UpSotCount: 0, Sensitivity: 0.5},
		},
		{
			"sensitivity above max",
			Parameters{UpSotCount: 10, Sensitivity: 1.5},
			Parameters{UpSotCount: 10, Sensitivity: 1.0},
		},
		{
			"sensitivity below min",
			Parameters{UpSotCount: 10, Sensitivity: -0.1},
			Parameters{UpSotCount: 10, Sensitivity: 0.0},
		},
		{
			"sort flag untouched",
			Parameters{UpSotCount: 10, Sensitivity: 0.5, SortByRelevance: true},
			Parameters{UpSotCount: 10, Sensitivity: 0.5, SortByRelevance: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()

	if p.UpSotCount != 10 {
		t.Errorf("UpSotCount = %v, want 10", p.UpSotCount)
	}
	if p.Sensitivity != 0.5 {
		t.Errorf("Sensitivity = %v, want 0.5", p.Sensitivity)
	}
	if p.SortByRelevance {
		t.Error("SortByRelevance should default to false")
	}
}

func TestFormats_Any(t *testing.T) {
	if (Formats{}).Any() {
		t.Error("empty Formats should report Any() == false")
	}
	if !(Formats{PDF: true}).Any() {
		t.Error("Formats with PDF should report Any() == true")
	}
}

func TestFormats_List(t *testing.T) {
	got := Formats{TXT: true, EDL: true}.List()
	want := []string{"txt", "edl"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if (Formats{}).List() != nil {
		t.Error("empty Formats should return nil list")
	}
}
