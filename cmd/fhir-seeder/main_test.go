package main

import (
	"testing"
)

func TestCommandWiring(t *testing.T) {
	root := seedCmd()
	if root.Use != "seed" {
		t.Errorf("unexpected use %q", root.Use)
	}

	gen := generateCmd()
	if gen.Use != "generate" {
		t.Errorf("unexpected use %q", gen.Use)
	}
	if gen.Flags().Lookup("count") == nil {
		t.Error("generate must expose a --count flag")
	}
	if gen.Flags().Lookup("seed") == nil {
		t.Error("generate must expose a --seed flag")
	}

	stub := stubServerCmd()
	if stub.Use != "stub-server" {
		t.Errorf("unexpected use %q", stub.Use)
	}
}

func TestGenerateDefaults(t *testing.T) {
	gen := generateCmd()
	count, err := gen.Flags().GetInt("count")
	if err != nil || count != 3 {
		t.Errorf("expected default count 3, got %d (%v)", count, err)
	}
	seed, err := gen.Flags().GetInt64("seed")
	if err != nil || seed != 0 {
		t.Errorf("expected default seed 0, got %d (%v)", seed, err)
	}
}
