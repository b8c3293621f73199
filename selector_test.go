package evmscript

import (
	"encoding/hex"
	"testing"
)

func TestSelector(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"approve(address,uint256)", "095ea7b3"},
		{"execute(address,uint256,bytes)", "b61d27f6"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			sel := Selector(tt.signature)
			if got := hex.EncodeToString(sel[:]); got != tt.want {
				t.Errorf("Expected selector %s, got %s", tt.want, got)
			}
		})
	}
}

func TestExecuteSelector(t *testing.T) {
	if ExecuteSelector != Selector(ExecuteSignature) {
		t.Error("ExecuteSelector should match the selector of ExecuteSignature")
	}
	if got := hex.EncodeToString(ExecuteSelector[:]); got != "b61d27f6" {
		t.Errorf("Expected b61d27f6, got %s", got)
	}
}
