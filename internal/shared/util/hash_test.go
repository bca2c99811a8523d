package util

import "testing"

func TestSHA256Hex(t *testing.T) {
	data := []byte("resume body")
	got := SHA256Hex(data)
	if got != SHA256Hex(data) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":      "resume.pdf",
		" cv/final.docx ": "cv_final.docx",
		`C:\Users\cv.txt`: "C:_Users_cv.txt",
	}
	for in, want := range cases {
		got, err := SanitizeFileName(in)
		if err != nil || got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "   ", "../etc/passwd"} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
