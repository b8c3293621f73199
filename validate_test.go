package evmscript

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"
)

func TestIsEvmScriptValid(t *testing.T) {
	ctx := context.Background()
	r := newMapResolver().register("alice.eth", addrA)
	meta := ProposalMetadata{TargetSignature: "transfer(address,uint256)"}

	script, err := hex.DecodeString(transferScript)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	decoded := DecodeEvmScript(ctx, r, script, meta)
	if decoded == nil {
		t.Fatal("Expected decoded script")
	}

	t.Run("stored script matches", func(t *testing.T) {
		proposal := StoredProposal{Type: Primary, Script: script, Metadata: meta, Decoded: decoded}
		if !IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected valid")
		}
	})

	t.Run("decodes when fields are missing", func(t *testing.T) {
		proposal := StoredProposal{Type: Primary, Script: script, Metadata: meta}
		if !IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected valid")
		}
	})

	t.Run("tampered value", func(t *testing.T) {
		tampered := *decoded
		tampered.Value = big.NewInt(1)
		proposal := StoredProposal{Type: Primary, Script: script, Metadata: meta, Decoded: &tampered}
		if IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected invalid when the displayed value differs")
		}
	})

	t.Run("tampered parameter", func(t *testing.T) {
		tampered := *decoded
		tampered.Parameters = []string{decoded.Parameters[0], "999"}
		proposal := StoredProposal{Type: Primary, Script: script, Metadata: meta, Decoded: &tampered}
		if IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected invalid when a parameter differs")
		}
	})

	t.Run("wrong proposal type", func(t *testing.T) {
		proposal := StoredProposal{Type: Secondary, Script: script, Metadata: meta, Decoded: decoded}
		if IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected invalid when the agent differs")
		}
	})

	t.Run("trailing bytes on stored script", func(t *testing.T) {
		padded := append(append([]byte{}, script...), 0x00)
		proposal := StoredProposal{Type: Primary, Script: padded, Metadata: meta, Decoded: decoded}
		if IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected invalid for a padded script")
		}
	})

	t.Run("re-encode failure counts as invalid", func(t *testing.T) {
		// The name no longer resolves.
		proposal := StoredProposal{Type: Primary, Script: script, Metadata: meta, Decoded: decoded}
		if IsEvmScriptValid(ctx, newMapResolver(), proposal, testAgents()) {
			t.Error("Expected invalid when a displayed name cannot be resolved")
		}
	})

	t.Run("undecodable script", func(t *testing.T) {
		proposal := StoredProposal{Type: Primary, Script: []byte{0, 0, 0, 1}, Metadata: meta}
		if IsEvmScriptValid(ctx, r, proposal, testAgents()) {
			t.Error("Expected invalid")
		}
	})
}

func TestIsEvmScriptValidRejectsOffsetSkippedFields(t *testing.T) {
	ctx := context.Background()

	for _, tt := range offsetSkippedScripts(t) {
		t.Run(tt.name, func(t *testing.T) {
			proposal := StoredProposal{Type: Primary, Script: tt.script, Metadata: tt.meta}
			if IsEvmScriptValid(ctx, nil, proposal, testAgents()) {
				t.Error("Expected invalid")
			}

			proposal.Decoded = DecodeEvmScript(ctx, nil, tt.script, tt.meta)
			if proposal.Decoded == nil {
				t.Fatal("Expected decoded script")
			}
			if IsEvmScriptValid(ctx, nil, proposal, testAgents()) {
				t.Error("Expected invalid with decoded fields supplied")
			}
		})
	}
}

func TestFormDataFromDecoded(t *testing.T) {
	meta := ProposalMetadata{TargetSignature: "transfer(address,uint256)", Title: "t", Description: "d"}

	t.Run("serialises fields", func(t *testing.T) {
		form, err := FormDataFromDecoded(Secondary, meta, &DecodedEvmScript{
			TargetAddress: "vault.eth",
			Value:         big.NewInt(12),
			Parameters:    []string{"alice.eth", "1000"},
		})
		if err != nil {
			t.Fatalf("FormDataFromDecoded failed: %v", err)
		}
		if form.Type != Secondary || form.TargetAddress != "vault.eth" || form.TargetValue != "12" {
			t.Errorf("Unexpected form %+v", form)
		}
		if form.Parameters != `["alice.eth","1000"]` {
			t.Errorf("Unexpected parameters %s", form.Parameters)
		}
		if form.TargetSignature != meta.TargetSignature || form.Title != "t" || form.Description != "d" {
			t.Errorf("Metadata not carried over: %+v", form)
		}
	})

	t.Run("nil value is zero", func(t *testing.T) {
		form, err := FormDataFromDecoded(Primary, meta, &DecodedEvmScript{})
		if err != nil {
			t.Fatalf("FormDataFromDecoded failed: %v", err)
		}
		if form.TargetValue != "0" || form.Parameters != "[]" {
			t.Errorf("Unexpected form %+v", form)
		}
	})

	t.Run("nil decoded", func(t *testing.T) {
		if _, err := FormDataFromDecoded(Primary, meta, nil); err == nil {
			t.Error("Expected error")
		}
	})
}

func TestProposalType(t *testing.T) {
	tests := []struct {
		in   string
		want ProposalType
	}{
		{"primary", Primary},
		{"PRIMARY", Primary},
		{" Secondary ", Secondary},
	}
	for _, tt := range tests {
		got, err := ParseProposalType(tt.in)
		if err != nil {
			t.Fatalf("ParseProposalType(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}

	if _, err := ParseProposalType("tertiary"); err == nil {
		t.Error("Expected error for unknown type")
	}
	if Primary.String() != "PRIMARY" || Secondary.String() != "SECONDARY" {
		t.Error("Unexpected String() output")
	}
	if ProposalType(9).String() != "ProposalType(9)" {
		t.Errorf("Unexpected String() output %s", ProposalType(9))
	}
}

func TestAgentAddressesContains(t *testing.T) {
	agents := testAgents()
	if !agents.Contains(addrC) || !agents.Contains(addrD) {
		t.Error("Expected both agents to be contained")
	}
	if agents.Contains(addrA) {
		t.Error("Did not expect addrA")
	}
}
