package filestore

import "testing"

func TestGCSObjectPath(t *testing.T) {
	g := &GCSStore{bucket: "ledger-files", prefix: "attachments/"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"public url", "https://storage.googleapis.com/ledger-files/attachments/a.pdf", "attachments/a.pdf"},
		{"gs uri", "gs://ledger-files/attachments/a.pdf", "attachments/a.pdf"},
		{"bare name", "a.pdf", "attachments/a.pdf"},
		{"already prefixed", "attachments/a.pdf", "attachments/a.pdf"},
		{"wrong bucket", "https://storage.googleapis.com/other/attachments/a.pdf", ""},
		{"foreign url", "https://example.com/a.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.objectPath(tt.input); got != tt.want {
				t.Errorf("objectPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGCSObjectURL(t *testing.T) {
	g := &GCSStore{bucket: "ledger-files", prefix: "attachments/"}
	url := g.objectURL("attachments/a.pdf")
	if url != "https://storage.googleapis.com/ledger-files/attachments/a.pdf" {
		t.Errorf("objectURL = %q", url)
	}
	// Stored URLs must resolve back for deletion.
	if got := g.objectPath(url); got != "attachments/a.pdf" {
		t.Errorf("round trip = %q", got)
	}
}
