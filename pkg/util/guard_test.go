package util

import "testing"

func TestSetIfAbsent(t *testing.T) {
	var dst *bool

	if !SetIfAbsent(&dst, true) {
		t.Fatal("first SetIfAbsent should assign")
	}
	if dst == nil || *dst != true {
		t.Fatalf("dst = %v, want true", dst)
	}

	if SetIfAbsent(&dst, false) {
		t.Error("second SetIfAbsent should not assign")
	}
	if *dst != true {
		t.Errorf("dst overwritten: got %v, want true", *dst)
	}
}

func TestSetIfAbsent_Struct(t *testing.T) {
	type asn struct{ Value int64 }
	var dst *asn

	SetIfAbsent(&dst, asn{Value: 65001})
	SetIfAbsent(&dst, asn{Value: 65002})

	if dst.Value != 65001 {
		t.Errorf("Value = %d, want 65001 (first write wins)", dst.Value)
	}
}

func TestPtr(t *testing.T) {
	p := Ptr("global")
	if p == nil || *p != "global" {
		t.Errorf("Ptr = %v", p)
	}
}
