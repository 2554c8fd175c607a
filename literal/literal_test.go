package literal

import (
	"testing"
)

func TestFindLeftmost(t *testing.T) {
	ls, err := NewSet([][]byte{[]byte("foo"), []byte("bar"), []byte("baz")})
	if err != nil {
		t.Fatal(err)
	}
	if ls.Len() != 3 {
		t.Fatalf("Len = %d", ls.Len())
	}

	start, end, ok := ls.Find([]byte("xx bar yy foo"), 0)
	if !ok || start != 3 || end != 6 {
		t.Errorf("Find gave (%d, %d, %v), want (3, 6, true)", start, end, ok)
	}

	_, _, ok = ls.Find([]byte("nothing"), 0)
	if ok {
		t.Error("expected no match")
	}
}

func TestFindAt(t *testing.T) {
	ls, err := NewSet([][]byte{[]byte("ab")})
	if err != nil {
		t.Fatal(err)
	}

	start, end, ok := ls.Find([]byte("ab ab"), 1)
	if !ok || start != 3 || end != 5 {
		t.Errorf("Find gave (%d, %d, %v), want (3, 5, true)", start, end, ok)
	}

	if _, _, ok := ls.Find([]byte("ab"), 5); ok {
		t.Error("out-of-range start must not match")
	}
	if !ls.IsMatch([]byte("xxab"), 0) {
		t.Error("IsMatch missed")
	}
	if ls.IsMatch([]byte("xxab"), 3) {
		t.Error("IsMatch matched past the last occurrence")
	}
}
