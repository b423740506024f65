package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/imamik/nebuctl/internal/pki"
)

// errMachineNameRequired is returned when no name was given and there is no
// terminal to ask for one.
var errMachineNameRequired = errors.New("machine name is required: pass --machine when not running in a terminal")

// machineNameRegex matches names safe to use as certificate file names.
var machineNameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]{0,62})$`)

var (
	stdinIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	promptMachineName = runMachineNameForm
)

// resolveMachineName returns name when set, otherwise asks for one.
func resolveMachineName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if !stdinIsTerminal() {
			return "", errMachineNameRequired
		}
		var err error
		name, err = promptMachineName(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read machine name: %w", err)
		}
		name = strings.TrimSpace(name)
	}
	if err := validateMachineName(name); err != nil {
		return "", err
	}
	return name, nil
}

func runMachineNameForm(ctx context.Context) (string, error) {
	var name string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Machine Name").
				Description("Certificate name of the node, unique within the mesh").
				Placeholder("web-1").
				Value(&name).
				Validate(validateMachineName),
		).Title("Nebula Node"),
	).RunWithContext(ctx)
	return name, err
}

func validateMachineName(name string) error {
	name = strings.TrimSpace(name)
	if !machineNameRegex.MatchString(name) {
		return fmt.Errorf("invalid machine name %q: use 1-63 letters, digits, dots, dashes or underscores", name)
	}
	if name == pki.LighthouseName || name == "ca" {
		return fmt.Errorf("machine name %q is reserved", name)
	}
	return nil
}
