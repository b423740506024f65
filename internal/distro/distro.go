// Package distro classifies a remote Linux host by package-management family.
package distro

import (
	"bufio"
	"bytes"
	"strings"
)

// Family is the package-management family of a Linux distribution.
type Family int

const (
	Unknown Family = iota
	DebianLike
	RhelLike
)

func (f Family) String() string {
	switch f {
	case DebianLike:
		return "debian-like"
	case RhelLike:
		return "rhel-like"
	default:
		return "unknown"
	}
}

// PackageManager returns the non-interactive package manager binary for the
// family, or "" for Unknown.
func (f Family) PackageManager() string {
	switch f {
	case DebianLike:
		return "apt-get"
	case RhelLike:
		return "yum"
	default:
		return ""
	}
}

// Marker files consulted by Detect.
const (
	OSReleasePath     = "/etc/os-release"
	RedhatReleasePath = "/etc/redhat-release"
	DebianVersionPath = "/etc/debian_version"
)

var families = map[string]Family{
	"debian":    DebianLike,
	"ubuntu":    DebianLike,
	"linuxmint": DebianLike,
	"raspbian":  DebianLike,
	"rhel":      RhelLike,
	"centos":    RhelLike,
	"almalinux": RhelLike,
	"rocky":     RhelLike,
	"fedora":    RhelLike,
	"ol":        RhelLike,
	"amzn":      RhelLike,
}

// FileReader is the read side of a remote filesystem.
type FileReader interface {
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
}

// Detect inspects /etc/os-release, then the legacy marker files. Read errors
// are swallowed: detection never fails, it returns Unknown instead.
func Detect(fs FileReader) Family {
	if ok, err := fs.Exists(OSReleasePath); err == nil && ok {
		if data, err := fs.ReadFile(OSReleasePath); err == nil {
			if family := ParseOSRelease(data); family != Unknown {
				return family
			}
		}
	}

	if ok, err := fs.Exists(RedhatReleasePath); err == nil && ok {
		return RhelLike
	}
	if ok, err := fs.Exists(DebianVersionPath); err == nil && ok {
		return DebianLike
	}
	return Unknown
}

// ParseOSRelease classifies os-release content by its ID= value, falling back
// to the first known entry of ID_LIKE=.
func ParseOSRelease(data []byte) Family {
	values := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		values[key] = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"'`))
	}

	if family, ok := families[values["ID"]]; ok {
		return family
	}
	for _, like := range strings.Fields(values["ID_LIKE"]) {
		if family, ok := families[like]; ok {
			return family
		}
	}
	return Unknown
}
