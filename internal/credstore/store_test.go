package credstore

import "testing"

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	tok, err := s.Get("casey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tok != "" {
		t.Fatalf("token for unknown agent = %q, want empty", tok)
	}

	if err := s.Put("casey", "resume_1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put("casey", "resume_2"); err != nil {
		t.Fatalf("put (upsert): %v", err)
	}

	tok, err = s.Get("casey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tok != "resume_2" {
		t.Fatalf("token = %q, want resume_2", tok)
	}
}

func TestStore_ReopenKeepsTokens(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put("marlow", "resume_m"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	tok, err := s2.Get("marlow")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tok != "resume_m" {
		t.Fatalf("token after reopen = %q, want resume_m", tok)
	}
}
