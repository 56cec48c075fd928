package domain

import (
	"reflect"
	"testing"
)

func TestPageSelection_Add(t *testing.T) {
	var sel PageSelection
	sel.Add("b.pdf", 3)
	sel.Add("a.pdf", 0)
	sel.Add("b.pdf", 1, 1)

	want := PageSelection{
		{Path: "b.pdf", Indices: []int{3, 1, 1}},
		{Path: "a.pdf", Indices: []int{0}},
	}
	if !reflect.DeepEqual(sel, want) {
		t.Errorf("Add() = %+v, want %+v", sel, want)
	}
	if sel.Total() != 4 {
		t.Errorf("Total() = %d, want 4", sel.Total())
	}
}

func TestPageSelection_Validate(t *testing.T) {
	tests := []struct {
		name     string
		sel      PageSelection
		wantType ErrorType
	}{
		{"valid", PageSelection{{Path: "a.pdf", Indices: []int{0, 0, 2}}}, ""},
		{"empty", nil, ErrorTypeValidation},
		{"empty indices", PageSelection{{Path: "a.pdf"}}, ErrorTypeValidation},
		{"empty path", PageSelection{{Path: "", Indices: []int{0}}}, ErrorTypeValidation},
		{"negative index", PageSelection{{Path: "a.pdf", Indices: []int{1, -1}}}, ErrorTypePageRange},
		{
			"duplicate path",
			PageSelection{{Path: "a.pdf", Indices: []int{0}}, {Path: "a.pdf", Indices: []int{1}}},
			ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantType == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !IsType(err, tt.wantType) {
				t.Errorf("Validate() = %v, want type %s", err, tt.wantType)
			}
		})
	}
}

func TestParsePageList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"0", []int{0}, false},
		{"0,2,4-6", []int{0, 2, 4, 5, 6}, false},
		{" 3 , 1 ", []int{3, 1}, false},
		{"2-2", []int{2}, false},
		{"1,1", []int{1, 1}, false},
		{"5-3", nil, true},
		{"a", nil, true},
		{"1-x", nil, true},
		{",", nil, true},
		{"0-2000000000", nil, true},
		{"0-99999,0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePageList(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePageList(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePageList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
