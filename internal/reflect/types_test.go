package reflect

import (
	"testing"
)

type testInterface interface {
	DoSomething()
}

type testStruct struct {
	Name string
}

func (t *testStruct) DoSomething() {}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var nilPtr *testStruct
	var nilIface testInterface
	var typedNil testInterface = nilPtr

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"nil interface", nilIface, true},
		{"typed nil", typedNil, true},
		{"nil slice", []string(nil), true},
		{"nil map", map[string]int(nil), true},
		{"nil func", (func())(nil), true},
		{"pointer", &testStruct{}, false},
		{"int", 0, false},
		{"string", "", false},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNil(tt.value); got != tt.want {
				t.Errorf("IsNil(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"int", TypeName[int](), "int"},
		{"pointer", TypeName[*testStruct](), "*reflect.testStruct"},
		{"interface", TypeName[testInterface](), "reflect.testInterface"},
		{"slice", TypeName[[]string](), "[]string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("TypeName = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
