package nebula

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"text/template"
)

const (
	// ServiceName is the systemd unit managing the daemon.
	ServiceName = "nebula"
	// UnitPath is where the unit file is installed.
	UnitPath = "/etc/systemd/system/nebula.service"
	// BinaryDir holds the nebula and nebula-cert binaries.
	BinaryDir = "/usr/local/bin"
)

//go:embed templates/nebula.service.tmpl
var templatesFS embed.FS

var unitTemplate = template.Must(template.ParseFS(templatesFS, "templates/nebula.service.tmpl"))

type unitData struct {
	Binary string
	Config string
}

// Unit renders the systemd unit that runs the daemon with the config at
// layout.Config.
func Unit(layout Layout) ([]byte, error) {
	var buf bytes.Buffer
	data := unitData{
		Binary: path.Join(BinaryDir, "nebula"),
		Config: layout.Config,
	}
	if err := unitTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s unit: %w", ServiceName, err)
	}
	return buf.Bytes(), nil
}
