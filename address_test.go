package custodia

import "testing"

func TestAddressValidate(t *testing.T) {
	cases := map[string]struct {
		addr    Address
		wantErr bool
	}{
		"simple":               {addr: "alice"},
		"with separators":      {addr: "alice.custody-one_x"},
		"numeric":              {addr: "42"},
		"sentinel":             {addr: "shielded"},
		"empty":                {addr: "", wantErr: true},
		"single char":          {addr: "a", wantErr: true},
		"uppercase":            {addr: "Alice", wantErr: true},
		"leading separator":    {addr: ".alice", wantErr: true},
		"trailing separator":   {addr: "alice.", wantErr: true},
		"double separator":     {addr: "al..ice", wantErr: true},
		"forbidden characters": {addr: "al ice", wantErr: true},
		"too long": {
			addr:    Address("a012345678901234567890123456789012345678901234567890123456789012345"),
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.addr.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("error expected")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAddressesSkipsEmpty(t *testing.T) {
	if err := ValidateAddresses("alice", "", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateAddresses("alice", "NOPE"); err == nil {
		t.Fatal("error expected")
	}
}
