// Package prerequisites checks that the tools a run shells out to locally
// are installed on the control host.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

const nebulaReleases = "https://github.com/slackhq/nebula/releases"

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string

	// VersionArgs is how the tool prints its version.
	VersionArgs []string
}

// NodeTools returns the tools needed to set up a node.
// nebula-cert signs the node's certificate on the control host.
func NodeTools() []Tool {
	return []Tool{
		{
			Name:        "nebula-cert",
			Required:    true,
			Description: "Required for signing host certificates with the network CA",
			InstallURL:  nebulaReleases,
			VersionArgs: []string{"-version"},
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

// Error returns an error if any required tools are missing.
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
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// lookPath is replaceable for tests.
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
			result.Version = getToolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckNode checks the tools needed to set up a node.
func CheckNode() *CheckResults {
	return Check(NodeTools())
}

// getToolVersion returns the first line the tool prints for its version
// flag, or "" when it cannot be determined.
func getToolVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	// #nosec G204 - path was resolved from a trusted Tool definition
	output, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}
