package custodia

import (
	"math"
	"testing"
)

func TestFeeCut(t *testing.T) {
	cases := map[string]struct {
		amount  uint64
		bp      uint32
		want    uint64
		wantErr bool
	}{
		"30 bp of 10000":    {amount: 10_000, bp: 30, want: 30},
		"zero rate":         {amount: 10_000, bp: 0, want: 0},
		"zero amount":       {amount: 0, bp: 500, want: 0},
		"rounds down":       {amount: 99, bp: 30, want: 0},
		"full rate":         {amount: 123, bp: 10_000, want: 123},
		"rate above whole":  {amount: 10, bp: 10_001, wantErr: true},
		"overflow detected": {amount: math.MaxUint64, bp: 2, wantErr: true},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := FeeCut(tc.amount, tc.bp)
			if tc.wantErr {
				if err == nil {
					t.Fatal("error expected")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFeeCutDeterminism(t *testing.T) {
	a, err := FeeCut(123_456_789, 30)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FeeCut(123_456_789, 30)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("fee must be deterministic: %d != %d", a, b)
	}
}
