// Package manifest defines the module records the installation pipeline
// executes: Module, Command, InstallStep, and VerifyStep. Manifests are
// produced by an external compiler and handed to rigup as an ordered YAML
// document; loading performs shape checking only, never semantic
// validation of the commands themselves.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Identity selects which account a module's commands run under.
type Identity int

const (
	// Root runs commands directly as the privileged administrator.
	Root Identity = iota

	// TargetUser runs commands as the scoped, unprivileged target user.
	TargetUser
)

// String returns the manifest spelling of an Identity.
func (id Identity) String() string {
	switch id {
	case Root:
		return "root"
	case TargetUser:
		return "target"
	default:
		return fmt.Sprintf("Identity(%d)", int(id))
	}
}

// UnmarshalYAML accepts "root" or "target". An absent identity field
// defaults to Root via the zero value.
func (id *Identity) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "root":
		*id = Root
	case "target":
		*id = TargetUser
	default:
		return fmt.Errorf("unknown identity %q (want \"root\" or \"target\")", s)
	}
	return nil
}

// Command is a structured program invocation. Commands are never
// flattened back into a shell string; the program and arguments travel
// separately all the way to the exec layer.
type Command struct {
	Program string   `yaml:"program"`
	Args    []string `yaml:"args"`
}

// Empty reports whether the command has no program.
func (c Command) Empty() bool { return c.Program == "" }

// String renders the command for logs and dry-run output.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// FetchRun names a registry tool whose installer is downloaded, verified
// against its pinned digest, and then executed with Args.
type FetchRun struct {
	Tool string   `yaml:"tool"`
	Args []string `yaml:"args"`
}

// InstallStep is a union: exactly one of Run (a local command) or
// FetchRun (a verified fetch-and-execute) is set.
type InstallStep struct {
	Name     string    `yaml:"name"`
	Run      *Command  `yaml:"run"`
	FetchRun *FetchRun `yaml:"fetch_run"`
}

// IsFetch reports whether the step resolves through the checksum registry.
func (s InstallStep) IsFetch() bool { return s.FetchRun != nil }

// VerifyStep is a health probe. Required is independent of the module's
// own required flag: a required module may carry an optional secondary
// verification whose failure only warns.
type VerifyStep struct {
	Command  Command `yaml:"run"`
	Required bool    `yaml:"required"`
}

// Module is one ordered unit of software installation.
type Module struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Required    bool          `yaml:"required"`
	Identity    Identity      `yaml:"identity"`
	Detached    bool          `yaml:"detached"`
	Requires    []string      `yaml:"requires"`
	Provides    []string      `yaml:"provides"`
	Install     []InstallStep `yaml:"install"`
	Verify      []VerifyStep  `yaml:"verify"`
}

// ContractKey returns the contract every module implicitly provides once
// it completes successfully, e.g. "module:users.ubuntu".
func (m *Module) ContractKey() string { return "module:" + m.ID }

// Manifest is the ordered module list plus document metadata.
type Manifest struct {
	Version int      `yaml:"version"`
	Modules []Module `yaml:"modules"`
}

// Load reads and shape-checks a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes and shape-checks the result.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

// check enforces shape only: IDs present and unique, step unions
// well-formed, verify commands non-empty.
func (m *Manifest) check() error {
	if len(m.Modules) == 0 {
		return fmt.Errorf("manifest contains no modules")
	}
	seen := make(map[string]bool, len(m.Modules))
	for i := range m.Modules {
		mod := &m.Modules[i]
		if mod.ID == "" {
			return fmt.Errorf("module at index %d has no id", i)
		}
		if seen[mod.ID] {
			return fmt.Errorf("duplicate module id %q", mod.ID)
		}
		seen[mod.ID] = true

		for j, step := range mod.Install {
			hasRun := step.Run != nil && !step.Run.Empty()
			hasFetch := step.FetchRun != nil && step.FetchRun.Tool != ""
			if hasRun == hasFetch {
				return fmt.Errorf("module %q install step %d: exactly one of run or fetch_run must be set", mod.ID, j)
			}
		}
		for j, v := range mod.Verify {
			if v.Command.Empty() {
				return fmt.Errorf("module %q verify step %d: missing command", mod.ID, j)
			}
		}
	}
	return nil
}

// NeedsRegistry reports whether any module carries a verified-fetch step.
// Runs without fetch steps may proceed without a checksum registry file.
func (m *Manifest) NeedsRegistry() bool {
	for i := range m.Modules {
		for _, step := range m.Modules[i].Install {
			if step.IsFetch() {
				return true
			}
		}
	}
	return false
}
