package counters

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInterfaceNotFound is returned when a configured interface does not exist.
var ErrInterfaceNotFound = errors.New("network interface not found")

// listInterfaceNames is replaced in tests.
var listInterfaceNames = func() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}
	return names, nil
}

// ResolveInterfaces validates the configured names against the interfaces present
// on this host. Duplicates and blank entries are dropped; order is preserved.
func ResolveInterfaces(names []string) ([]string, error) {
	present, err := listInterfaceNames()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	known := make(map[string]struct{}, len(present))
	for _, name := range present {
		known[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(names))
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, fmt.Errorf("%w: %q", ErrInterfaceNotFound, name)
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInterfaceNotFound, name)
		}
		seen[name] = struct{}{}
		resolved = append(resolved, name)
	}
	if len(resolved) == 0 {
		return nil, ErrInterfaceNotFound
	}
	return resolved, nil
}
