// Package prerequisites provides utilities for checking required client tools.
//
// kmecs talks to AWS through the SDK, so the only external binary it may
// need is kumactl for certificate generation. The aws CLI is reported as an
// optional convenience for manual cleanup.
package prerequisites

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrMissingTools is returned (wrapped) when a required tool is not on PATH.
var ErrMissingTools = errors.New("missing required tools")

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name (or path) to look for.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// KumactlTool returns the certificate generation tool. name overrides the
// binary name when non-empty (e.g. an absolute path from KMECS_KUMACTL).
func KumactlTool(name string) Tool {
	if name == "" {
		name = "kumactl"
	}
	return Tool{
		Name:        name,
		Required:    true,
		Description: "Required for generating the control plane TLS certificate",
		InstallURL:  "https://docs.konghq.com/mesh/latest/production/install-kumactl/",
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "aws",
			Required:    false,
			Description: "Useful for inspecting and manually cleaning up stacks and secrets",
			InstallURL:  "https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error wrapping ErrMissingTools if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingTools, strings.Join(missing, ", "))
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = getToolVersion(path)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckForDeploy checks the tools a deploy needs. Without kumactl
// the built-in certificate generator is used and nothing is required.
func CheckForDeploy(needKumactl bool, kumactl string) *CheckResults {
	if !needKumactl {
		return Check(nil)
	}
	return Check([]Tool{KumactlTool(kumactl)})
}

// CheckAll checks every known tool (kumactl + optional).
func CheckAll(kumactl string) *CheckResults {
	optional := OptionalTools()
	all := make([]Tool, 0, len(optional)+1)
	all = append(all, KumactlTool(kumactl))
	all = append(all, optional...)
	return Check(all)
}

// getToolVersion attempts to get the version of a tool.
// Returns empty string if version cannot be determined.
func getToolVersion(path string) string {
	for _, flag := range []string{"version", "--version"} {
		// #nosec G204 - path comes from exec.LookPath on a trusted tool name
		output, err := exec.Command(path, flag).Output()
		if err == nil {
			lines := strings.Split(string(output), "\n")
			if len(lines) > 0 {
				return strings.TrimSpace(lines[0])
			}
		}
	}
	return ""
}
