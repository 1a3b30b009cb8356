package manifest

import (
	"strings"
	"testing"
)

const sampleManifest = `
version: 1
modules:
  - id: users.ubuntu
    description: Create the deploy user
    required: true
    identity: root
    provides: ["users.ready"]
    install:
      - name: add user
        run: {program: useradd, args: ["-m", "deploy"]}
    verify:
      - run: {program: id, args: ["deploy"]}
        required: true
  - id: nodejs
    description: Install node via nvm
    required: false
    identity: target
    requires: ["users.ready"]
    install:
      - name: fetch nvm installer
        fetch_run: {tool: nvm, args: ["--no-use"]}
    verify:
      - run: {program: node, args: ["--version"]}
        required: true
      - run: {program: npm, args: ["--version"]}
        required: false
`

func TestParse_Sample(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(m.Modules) != 2 {
		t.Fatalf("len(Modules) = %d, want 2", len(m.Modules))
	}

	users := m.Modules[0]
	if users.ID != "users.ubuntu" {
		t.Errorf("id = %q, want users.ubuntu", users.ID)
	}
	if !users.Required {
		t.Error("users.ubuntu should be required")
	}
	if users.Identity != Root {
		t.Errorf("identity = %v, want Root", users.Identity)
	}
	if users.ContractKey() != "module:users.ubuntu" {
		t.Errorf("ContractKey = %q", users.ContractKey())
	}

	node := m.Modules[1]
	if node.Identity != TargetUser {
		t.Errorf("identity = %v, want TargetUser", node.Identity)
	}
	if node.Required {
		t.Error("nodejs should be optional")
	}
	if !node.Install[0].IsFetch() {
		t.Error("nodejs install step should be a fetch step")
	}
	if len(node.Verify) != 2 {
		t.Fatalf("nodejs verify steps = %d, want 2", len(node.Verify))
	}
	if !node.Verify[0].Required || node.Verify[1].Required {
		t.Error("verify required flags decoded wrong")
	}
}

func TestParse_RejectsUnknownIdentity(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - id: a
    identity: wheel
    install:
      - run: {program: "true"}
`))
	if err == nil || !strings.Contains(err.Error(), "identity") {
		t.Fatalf("expected identity error, got %v", err)
	}
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - id: a
    install: [{run: {program: "true"}}]
  - id: a
    install: [{run: {program: "true"}}]
`))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestParse_RejectsAmbiguousInstallStep(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - id: a
    install:
      - run: {program: "true"}
        fetch_run: {tool: nvm}
`))
	if err == nil {
		t.Fatal("expected error for step with both run and fetch_run")
	}

	_, err = Parse([]byte(`
modules:
  - id: b
    install:
      - name: neither
`))
	if err == nil {
		t.Fatal("expected error for step with neither run nor fetch_run")
	}
}

func TestParse_RejectsEmptyVerifyCommand(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - id: a
    verify:
      - required: true
`))
	if err == nil {
		t.Fatal("expected error for verify step without command")
	}
}

func TestNeedsRegistry(t *testing.T) {
	withFetch, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	if !withFetch.NeedsRegistry() {
		t.Error("manifest with fetch_run step should need the registry")
	}

	localOnly, err := Parse([]byte(`
modules:
  - id: a
    install: [{run: {program: apt-get, args: [update]}}]
`))
	if err != nil {
		t.Fatal(err)
	}
	if localOnly.NeedsRegistry() {
		t.Error("local-only manifest should not need the registry")
	}
}

func TestCommand_String(t *testing.T) {
	c := Command{Program: "git", Args: []string{"config", "--global"}}
	if got := c.String(); got != "git config --global" {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{Program: "ls"}).String(); got != "ls" {
		t.Errorf("String() = %q", got)
	}
}
