package logging

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"", "dev", "prod"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		logger.Debug("startup check")
		_ = logger.Sync()
	}
}

func TestQuietNeverNil(t *testing.T) {
	if Quiet(false) == nil || Quiet(true) == nil {
		t.Fatal("Quiet returned nil")
	}
}
