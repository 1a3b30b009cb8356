package checksum

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checksums.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validDigest = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestLoad_AndLookup(t *testing.T) {
	path := writeRegistry(t, `
[[entry]]
tool = "nvm"
url = "https://example.com/nvm/install.sh"
sha256 = "`+validDigest+`"

[[entry]]
tool = "consul"
url = "https://example.com/consul/install.sh"
sha256 = "`+validDigest+`"
`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	e, err := reg.Lookup("nvm")
	if err != nil {
		t.Fatalf("Lookup(nvm): %v", err)
	}
	if e.URL != "https://example.com/nvm/install.sh" {
		t.Errorf("url = %q", e.URL)
	}
	if e.SHA256 != validDigest {
		t.Errorf("sha256 = %q", e.SHA256)
	}
}

func TestLookup_MissIsTyped(t *testing.T) {
	reg := Empty()
	_, err := reg.Lookup("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the tool: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/checksums.toml")
	if err == nil {
		t.Fatal("expected error for missing registry file")
	}
}

func TestLoad_RejectsMalformedDigest(t *testing.T) {
	path := writeRegistry(t, `
[[entry]]
tool = "nvm"
url = "https://example.com/install.sh"
sha256 = "not-hex"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed digest")
	}

	short := writeRegistry(t, `
[[entry]]
tool = "nvm"
url = "https://example.com/install.sh"
sha256 = "abcdef"
`)
	if _, err := Load(short); err == nil {
		t.Fatal("expected error for truncated digest")
	}
}

func TestLoad_RejectsDuplicateTool(t *testing.T) {
	path := writeRegistry(t, `
[[entry]]
tool = "nvm"
url = "https://a.example.com"
sha256 = "`+validDigest+`"

[[entry]]
tool = "nvm"
url = "https://b.example.com"
sha256 = "`+validDigest+`"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate tool")
	}
}
