package provisioning

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// releaseVersionRegex accepts v-prefixed or bare semver release tags. The
// version ends up in a shell command, so nothing else is allowed through.
var releaseVersionRegex = regexp.MustCompile(`^v?[0-9]+\.[0-9]+\.[0-9]+(-[0-9A-Za-z.]+)?$`)

// ValidationError represents a deployment validation error or warning.
type ValidationError struct {
	Field    string // Deployment field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
// It runs before the host is touched.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	var errs []string
	for _, ve := range validate(ctx) {
		if !ve.IsError() {
			ctx.Observer.Event(Event{Type: EventValidationWarning, Phase: vp.Name(), Message: ve.Message, Resource: ve.Field})
			continue
		}
		ctx.Observer.Event(Event{Type: EventValidationError, Phase: vp.Name(), Message: ve.Message, Resource: ve.Field})
		errs = append(errs, ve.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("deployment validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	addError := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg, Severity: "error"})
	}

	// --- Target ---

	if ctx.Target.Host == "" {
		addError("Target.Host", "target host is required")
	}
	if ctx.Remote == nil {
		addError("Remote", "a remote session is required")
	}

	d := ctx.Deployment
	if d == nil {
		addError("Deployment", "deployment is required")
		return errs
	}

	// --- Identity ---

	if d.Name == "" {
		addError("Name", "host name is required")
	}
	switch d.Role {
	case RoleLighthouse, RoleNode:
	default:
		addError("Role", fmt.Sprintf("unknown role %q", d.Role))
	}
	if d.Credentials == nil {
		addError("Credentials", "a certificate source is required")
	}

	// --- Remote layout ---

	for field, p := range map[string]string{
		"Layout.Dir":    d.Layout.Dir,
		"Layout.CA":     d.Layout.CA,
		"Layout.Cert":   d.Layout.Cert,
		"Layout.Key":    d.Layout.Key,
		"Layout.Config": d.Layout.Config,
	} {
		if !path.IsAbs(p) || path.Clean(p) != p || strings.ContainsAny(p, " \t\n'\"$;&|") {
			addError(field, fmt.Sprintf("%q must be a clean absolute path", p))
		}
	}
	if d.Layout.Dir == "/" {
		addError("Layout.Dir", "config directory must not be the filesystem root")
	}

	// --- Rendered files ---

	if len(d.Config) == 0 {
		addError("Config", "rendered configuration is empty")
	}
	if len(d.Unit) == 0 {
		addError("Unit", "rendered unit file is empty")
	}

	// --- Release ---

	if d.Release.Version == "" || d.Release.Base == "" {
		addError("Release", "release version and download base are required")
	} else if !releaseVersionRegex.MatchString(d.Release.Version) {
		addError("Release.Version", fmt.Sprintf("%q is not a release version (e.g., 'v1.9.5')", d.Release.Version))
	} else if !strings.HasPrefix(d.Release.Version, "v") {
		errs = append(errs, ValidationError{
			Field:    "Release.Version",
			Message:  "version should start with 'v' (e.g., 'v1.9.5')",
			Severity: "warning",
		})
	}

	return errs
}
