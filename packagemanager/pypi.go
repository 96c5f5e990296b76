package packagemanager

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/safedep/tryout/runner"
)

const (
	pipManifestFile = "requirements.txt"

	// pip has no project local install directory, packages are installed
	// with --target into this directory instead.
	pipPackagesDir = ".pip_packages"
)

var pipNameSeparators = regexp.MustCompile(`[-_.]+`)

func DefaultPipAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Name:         "pip",
		ManifestFile: pipManifestFile,
		PackagesDir:  pipPackagesDir,
		InstallCommands: []runner.Command{
			{
				Exe:  "pip",
				Args: []string{"install", "--upgrade", "--target", pipPackagesDir, "-r", pipManifestFile},
			},
		},
		ManifestOverlay: pipOverlayManifest,
		NewVersionProbe: func(packagesDir string) VersionProbe {
			return NewDistInfoVersionProbe(packagesDir)
		},
	}
}

// pipOverlayManifest rewrites the requirement lines of overridden packages
// and appends overrides for packages not in the file. Comments, options and
// environment markers are kept.
func pipOverlayManifest(manifest []byte, depSet DependencySet) ([]byte, error) {
	overrides := make(map[string]string)
	names := make(map[string]string)
	for name, version := range depSet.Overrides() {
		normalized := pipNormalizeName(name)
		overrides[normalized] = version
		names[normalized] = name
	}

	lines := strings.SplitAfter(string(manifest), "\n")
	applied := make(map[string]bool)

	var out strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}

		content := strings.TrimRight(line, "\r\n")
		ending := line[len(content):]

		req, ok := pipParseRequirementLine(content)
		if !ok {
			out.WriteString(line)
			continue
		}

		normalized := pipNormalizeName(req.name)
		version, overridden := overrides[normalized]
		if !overridden {
			out.WriteString(line)
			continue
		}

		req.version = pipVersionSpecifier(version)
		applied[normalized] = true

		out.WriteString(req.String())
		out.WriteString(ending)
	}

	missing := slices.Sorted(maps.Keys(overrides))
	for _, normalized := range missing {
		if applied[normalized] {
			continue
		}

		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteString("\n")
		}

		req := pipRequirement{name: names[normalized], version: pipVersionSpecifier(overrides[normalized])}
		out.WriteString(req.String())
		out.WriteString("\n")
	}

	return []byte(out.String()), nil
}

type pipRequirement struct {
	name    string
	extras  []string
	version string
	marker  string
	comment string
}

func (r pipRequirement) String() string {
	var sb strings.Builder

	sb.WriteString(r.name)
	if len(r.extras) > 0 {
		sb.WriteString("[" + strings.Join(r.extras, ",") + "]")
	}

	sb.WriteString(r.version)

	if r.marker != "" {
		sb.WriteString("; " + r.marker)
	}

	if r.comment != "" {
		sb.WriteString("  " + r.comment)
	}

	return sb.String()
}

// pipParseRequirementLine parses a named requirement. Blank lines, comments,
// options such as -r or --index-url, and direct references are not.
func pipParseRequirementLine(line string) (pipRequirement, bool) {
	var req pipRequirement

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
		return req, false
	}

	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, " @ ") ||
		strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, "/") {
		return req, false
	}

	if idx := strings.Index(trimmed, " #"); idx != -1 {
		req.comment = strings.TrimSpace(trimmed[idx:])
		trimmed = strings.TrimSpace(trimmed[:idx])
	}

	if spec, marker, found := strings.Cut(trimmed, ";"); found {
		req.marker = strings.TrimSpace(marker)
		trimmed = strings.TrimSpace(spec)
	}

	name, version, extras, err := pipParsePackageInfo(trimmed)
	if err != nil || name == "" || strings.ContainsAny(name, " \t") {
		return req, false
	}

	req.name = name
	req.version = version
	req.extras = extras

	return req, true
}

// pipVersionSpecifier turns a bare version into an exact pin. Empty and "*"
// mean any version.
func pipVersionSpecifier(version string) string {
	version = strings.TrimSpace(version)

	switch {
	case version == "" || version == "*":
		return ""
	case strings.ContainsAny(version[:1], "=<>!~"):
		return version
	default:
		return "==" + version
	}
}

// pipNormalizeName normalizes a distribution name as pip compares them:
// lower case with runs of "-", "_" and "." collapsed to "-".
func pipNormalizeName(name string) string {
	return pipNameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// pipParsePackageInfo parses a pip install package specification, separating the package name,
// version constraints, and any extras (additional features) to be installed.
// Example: "django[mysql,redis]>=3.0" returns ("django", ">=3.0", ["mysql", "redis"], nil)
func pipParsePackageInfo(input string) (packageName, version string, extras []string, err error) {
	if input == "" {
		return "", "", nil, fmt.Errorf("package info cannot be empty")
	}

	input = strings.TrimSpace(input)

	openBracket := strings.Index(input, "[")
	closeBracket := strings.Index(input, "]")

	if openBracket != -1 && closeBracket != -1 && openBracket < closeBracket {
		extrasStr := strings.TrimSpace(input[openBracket+1 : closeBracket])
		if extrasStr != "" {
			for _, extra := range strings.Split(extrasStr, ",") {
				if trimmedExtra := strings.TrimSpace(extra); trimmedExtra != "" {
					extras = append(extras, trimmedExtra)
				}
			}
		}

		input = input[:openBracket] + input[closeBracket+1:]
	} else if (openBracket != -1 && closeBracket == -1) || (openBracket == -1 && closeBracket != -1) {
		return "", "", nil, fmt.Errorf("mismatched brackets in input '%s'", input)
	}

	// Find the earliest operator occurrence
	operators := []string{"==", ">=", "<=", "!=", ">", "<", "~="}
	index := -1

	for _, op := range operators {
		i := strings.Index(input, op)
		if i != -1 && (index == -1 || i < index) {
			index = i
		}
	}

	if index == -1 {
		return strings.TrimSpace(input), "", extras, nil
	}

	packageName = strings.TrimSpace(input[:index])
	version = strings.TrimSpace(input[index:])

	if packageName == "" {
		return "", "", nil, fmt.Errorf("invalid package name in input '%s'", input)
	}

	return packageName, version, extras, nil
}

// pipConvertCompatibleRelease rewrites a ~= compatible release clause as a
// range, e.g. ~=2.1.5 becomes >=2.1.5,<2.2.0
func pipConvertCompatibleRelease(version string) string {
	if !strings.HasPrefix(version, "~=") {
		return version
	}

	version = strings.TrimPrefix(version, "~=")
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return ""
	}

	switch len(parts) {
	case 2:
		nextMajor, _ := strconv.Atoi(parts[0])
		nextMajor += 1
		return fmt.Sprintf(">=%s,<%d.0", version, nextMajor)

	case 3:
		nextMinor, _ := strconv.Atoi(parts[1])
		nextMinor += 1
		return fmt.Sprintf(">=%s,<%s.%d.0", version, parts[0], nextMinor)

	default:
		incIndex := len(parts) - 2
		upperBoundParts := make([]string, incIndex+1)
		copy(upperBoundParts, parts[:incIndex+1])

		increment, _ := strconv.Atoi(upperBoundParts[incIndex])
		increment++
		upperBoundParts[incIndex] = strconv.Itoa(increment)

		return fmt.Sprintf(">=%s,<%s", version, strings.Join(upperBoundParts, "."))
	}
}
