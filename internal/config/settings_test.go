package config

import "testing"

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("DERMA_TEST_STR", "value")
	t.Setenv("DERMA_TEST_INT", "42")
	t.Setenv("DERMA_TEST_BAD_INT", "forty")
	t.Setenv("DERMA_TEST_BOOL", "Yes")
	t.Setenv("DERMA_TEST_BAD_BOOL", "maybe")

	if got := getenv("DERMA_TEST_STR", "def"); got != "value" {
		t.Errorf("getenv = %q, want value", got)
	}
	if got := getenv("DERMA_TEST_MISSING", "def"); got != "def" {
		t.Errorf("getenv missing = %q, want def", got)
	}
	if got := getenvInt("DERMA_TEST_INT", 1); got != 42 {
		t.Errorf("getenvInt = %d, want 42", got)
	}
	if got := getenvInt("DERMA_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getenvInt bad = %d, want 7", got)
	}
	if got := getenvBool("DERMA_TEST_BOOL", false); !got {
		t.Error("getenvBool = false, want true")
	}
	if got := getenvBool("DERMA_TEST_BAD_BOOL", true); !got {
		t.Error("getenvBool bad value should fall back to default")
	}
}
