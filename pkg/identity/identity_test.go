package identity

import (
	"encoding/binary"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestHash_Deterministic(t *testing.T) {
	first := Hash("a", "b")
	for i := 0; i < 100; i++ {
		if got := Hash("a", "b"); got != first {
			t.Fatalf("Hash changed between calls: %d != %d", got, first)
		}
	}
}

func TestHash_MatchesBlake2bDigest(t *testing.T) {
	h, err := blake2b.New(8, nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("테슬라 모델Y 매트"))
	want := binary.BigEndian.Uint64(h.Sum(nil))

	if got := Hash("테슬라 모델Y 매트"); got != want {
		t.Errorf("Hash() = %d, want %d", got, want)
	}
}

func TestHash_Concatenates(t *testing.T) {
	if Hash("ab") != Hash("a", "b") {
		t.Error("parts should be concatenated without separators")
	}
	if Hash("a", "", "b") != Hash("a", "b") {
		t.Error("empty parts should contribute no bytes")
	}
}

func TestHash_Sensitivity(t *testing.T) {
	inputs := []string{"a", "b", "A", "", " ", "N/A", "1,234", "1234", "테슬라", "테슬라 "}
	seen := make(map[uint64]string)
	for _, in := range inputs {
		id := Hash(in)
		if prev, ok := seen[id]; ok {
			t.Errorf("Hash(%q) collides with Hash(%q)", in, prev)
		}
		seen[id] = in
	}
}
