package provisioning

import (
	"fmt"

	"github.com/imamik/nebuctl/internal/distro"
)

// UnsupportedDistroError is returned when a package has to be installed on
// a host whose package manager is not known.
type UnsupportedDistroError struct {
	Family distro.Family
	Binary string
}

func (e *UnsupportedDistroError) Error() string {
	return fmt.Sprintf("cannot install %s: no package manager known for %s distribution", e.Binary, e.Family)
}
