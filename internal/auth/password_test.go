package auth

import "testing"

func TestHashAndCheck(t *testing.T) {
	t.Parallel()

	h := NewHasher(10)
	hash, err := h.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Check("s3cret-password", hash) {
		t.Fatal("expected matching password to verify")
	}
	if h.Check("wrong-password", hash) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHasherEnforcesMinimumCost(t *testing.T) {
	t.Parallel()

	h := NewHasher(4)
	if h.cost < 10 {
		t.Fatalf("cost %d below minimum", h.cost)
	}
}
