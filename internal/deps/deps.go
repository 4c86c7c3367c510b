package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program voicelink shells out to.
type Tool struct {
	Name        string
	Purpose     string
	Required    bool
	VersionArgs []string
}

// Tools lists the programs the daemon may run.
var Tools = []Tool{
	{Name: "pw-record", Purpose: "microphone capture", Required: true, VersionArgs: []string{"--version"}},
	{Name: "pw-cli", Purpose: "PipeWire availability check", Required: false, VersionArgs: []string{"--version"}},
	{Name: "wl-copy", Purpose: "clipboard fallback on Wayland", Required: false, VersionArgs: []string{"--version"}},
	{Name: "notify-send", Purpose: "desktop notifications", Required: false, VersionArgs: []string{"--version"}},
}

// Report pairs a tool with its status.
type Report struct {
	Tool
	Status
}

// Check looks name up on PATH and, when found, runs it with versionArgs to
// read a version line.
func Check(name string, versionArgs ...string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if len(versionArgs) == 0 {
		return status
	}

	// first non-empty line of the version output
	output, err := exec.Command(path, versionArgs...).CombinedOutput()
	if err == nil {
		for _, line := range strings.Split(string(output), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				status.Version = line
				break
			}
		}
	}

	return status
}

// CheckAll reports every entry of Tools.
func CheckAll() []Report {
	reports := make([]Report, len(Tools))
	for i, t := range Tools {
		reports[i] = Report{Tool: t, Status: Check(t.Name, t.VersionArgs...)}
	}
	return reports
}

// Missing returns the required tools that are not installed.
func Missing(reports []Report) []string {
	var missing []string
	for _, r := range reports {
		if r.Required && !r.Installed {
			missing = append(missing, r.Name)
		}
	}
	return missing
}
