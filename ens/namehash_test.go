package ens

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNameHash(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameHash(tt.name).Hex(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("lower-cases", func(t *testing.T) {
		got, err := Normalize(" Foo.ETH ")
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got != "foo.eth" {
			t.Errorf("Expected foo.eth, got %s", got)
		}
	})

	t.Run("normalised names hash identically", func(t *testing.T) {
		got, err := Normalize("FOO.eth")
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if NameHash(got) != NameHash("foo.eth") {
			t.Error("Expected equal nodes")
		}
	})

	for _, bad := range []string{"", "   ", "foo..eth", ".eth"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := Normalize(bad)
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("Expected ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestReverseName(t *testing.T) {
	addr := common.HexToAddress("0xAbCdEf0123456789aBcDeF0123456789AbCdEf01")
	want := "abcdef0123456789abcdef0123456789abcdef01.addr.reverse"
	if got := ReverseName(addr); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
