package common

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateUUID(t *testing.T) {
	// Test without prefix
	id1 := GenerateUUID("")
	if id1 == "" {
		t.Error("GenerateUUID() returned empty string")
	}

	// Validate it's a proper UUID format
	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("GenerateUUID() returned invalid UUID: %v", err)
	}

	// Test with prefix
	prefix := "test"
	id2 := GenerateUUID(prefix)
	if !strings.HasPrefix(id2, prefix+"_") {
		t.Errorf("GenerateUUID() with prefix %s should start with %s_, got %s", prefix, prefix, id2)
	}

	// Test uniqueness
	id3 := GenerateUUID("")
	if id1 == id3 {
		t.Error("GenerateUUID() should generate unique UUIDs")
	}
}

func TestGenerateShortUUID(t *testing.T) {
	// Test without prefix
	id1 := GenerateShortUUID("")
	if id1 == "" {
		t.Error("GenerateShortUUID() returned empty string")
	}

	// Should not contain dashes
	if strings.Contains(id1, "-") {
		t.Error("GenerateShortUUID() should not contain dashes")
	}

	// Should be 32 characters (UUID without dashes)
	if len(id1) != 32 {
		t.Errorf("GenerateShortUUID() should be 32 characters, got %d", len(id1))
	}

	// Test with prefix
	prefix := "short"
	id2 := GenerateShortUUID(prefix)
	if !strings.HasPrefix(id2, prefix+"_") {
		t.Errorf("GenerateShortUUID() with prefix %s should start with %s_, got %s", prefix, prefix, id2)
	}
}

func TestGenerateOperationID(t *testing.T) {
	opID := GenerateOperationID()

	if !strings.HasPrefix(opID, "op_") {
		t.Errorf("GenerateOperationID() should start with 'op_', got %s", opID)
	}

	// Test uniqueness
	opID2 := GenerateOperationID()
	if opID == opID2 {
		t.Error("GenerateOperationID() should generate unique IDs")
	}
}

func TestGenerateAccountID(t *testing.T) {
	accID := GenerateAccountID()

	if !strings.HasPrefix(accID, "acc_") {
		t.Errorf("GenerateAccountID() should start with 'acc_', got %s", accID)
	}

	// Test uniqueness
	accID2 := GenerateAccountID()
	if accID == accID2 {
		t.Error("GenerateAccountID() should generate unique IDs")
	}
}

// Benchmark tests
func BenchmarkGenerateUUID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateUUID("test")
	}
}

func BenchmarkGenerateOperationID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateOperationID()
	}
}
