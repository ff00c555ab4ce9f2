package engine

import (
	"reflect"
	"testing"
)

func abs16(v int16) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}

func TestDeclickBound(t *testing.T) {
	testCases := map[string]struct {
		length int
		seams  []int
		width  int
		value  int16
	}{
		"Middle":       {length: 1024, seams: []int{500}, width: 64, value: 1000},
		"NearEnd":      {length: 1024, seams: []int{1000}, width: 64, value: -1000},
		"NearStart":    {length: 1024, seams: []int{3}, width: 64, value: 20000},
		"Close":        {length: 1024, seams: []int{100, 130, 900}, width: 64, value: 32767},
		"NarrowConfig": {length: 256, seams: []int{128}, width: 4, value: -32768},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			buf := make([]int16, testCase.length)
			for i := range buf {
				buf[i] = testCase.value
			}
			declick(buf, testCase.seams, testCase.width)

			limit := abs16(testCase.value)
			for _, seam := range testCase.seams {
				if abs16(buf[seam-1]) >= limit || abs16(buf[seam]) >= limit {
					t.Errorf("seam %d is not attenuated: %d %d", seam, buf[seam-1], buf[seam])
				}
			}
			for i, s := range buf {
				near := false
				for _, seam := range testCase.seams {
					if i >= seam-testCase.width && i < seam+testCase.width {
						near = true
					}
				}
				if !near && s != testCase.value {
					t.Errorf("sample %d is outside every ramp: expected %d, got %d", i, testCase.value, s)
				}
				if abs16(s) > limit {
					t.Errorf("sample %d grew to %d", i, s)
				}
			}
		})
	}
}

func TestDeclickDisabled(t *testing.T) {
	buf := []int16{5, 5, 5, 5}
	declick(buf, []int{2}, 0)
	if expected := []int16{5, 5, 5, 5}; !reflect.DeepEqual(expected, buf) {
		t.Errorf("expected %v, got %v", expected, buf)
	}
}

func TestRamps(t *testing.T) {
	testCases := map[string]struct {
		ramp     func([]int16, int)
		buf      []int16
		width    int
		expected []int16
	}{
		"In":         {ramp: rampIn, buf: []int16{300, 300, 300, 300, 300}, width: 2, expected: []int16{100, 200, 300, 300, 300}},
		"Out":        {ramp: rampOut, buf: []int16{300, 300, 300, 300, 300}, width: 2, expected: []int16{300, 300, 300, 200, 100}},
		"OutClamped": {ramp: rampOut, buf: []int16{90, 90}, width: 64, expected: []int16{60, 30}},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			testCase.ramp(testCase.buf, testCase.width)
			if !reflect.DeepEqual(testCase.expected, testCase.buf) {
				t.Errorf("expected %v, got %v", testCase.expected, testCase.buf)
			}
		})
	}
}
