package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/nebuctl/internal/platform/ssh"
	"github.com/imamik/nebuctl/internal/provisioning"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	readyStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

// summary is what a successful setup reports.
type summary struct {
	Role     provisioning.Role
	Name     string
	Target   ssh.Target
	Address  netutil.NodeAddress
	Endpoint string
	State    *provisioning.State
}

// renderSummary produces a lipgloss-styled report of a finished run.
func renderSummary(s summary) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("  nebuctl %s: %s", s.Role, s.Name)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("  Host"))
	b.WriteString("\n")
	writeRow(&b, "target", s.Target.String())
	if s.State != nil {
		writeRow(&b, "distro", s.State.Distro.String())
		if s.State.Platform != "" {
			writeRow(&b, "platform", s.State.Platform)
		}
		if len(s.State.Installed) > 0 {
			writeRow(&b, "installed", strings.Join(s.State.Installed, ", "))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Mesh"))
	b.WriteString("\n")
	writeRow(&b, "address", s.Address.String())
	writeRow(&b, "lighthouse", s.Endpoint)

	if s.State != nil {
		b.WriteString("\n")
		b.WriteString(readyStyle.Render(fmt.Sprintf("  ✅ nebula %s, %s", s.State.Service, s.State.Stage)))
		b.WriteString("\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(dimStyle.Render(fmt.Sprintf("    %-12s", label)))
	b.WriteString(value)
	b.WriteString("\n")
}
