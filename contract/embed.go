package contract

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed abis/*.json
var abiFS embed.FS

var embedded = struct {
	sync.Mutex
	loaded map[string]*Interface
}{loaded: make(map[string]*Interface)}

// Embedded returns the named ABI shipped with the binary, parsing it on first use.
func Embedded(name string) (*Interface, error) {
	embedded.Lock()
	defer embedded.Unlock()

	if iface, ok := embedded.loaded[name]; ok {
		return iface, nil
	}

	data, err := abiFS.ReadFile(path.Join("abis", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w: no embedded abi %q", ErrInvalidABI, name)
	}
	iface, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("embedded abi %q: %w", name, err)
	}
	embedded.loaded[name] = iface
	return iface, nil
}

// MustEmbedded is Embedded for package initialisation; a broken embedded ABI is a
// build defect.
func MustEmbedded(name string) *Interface {
	iface, err := Embedded(name)
	if err != nil {
		panic(err)
	}
	return iface
}

func EmbeddedNames() []string {
	entries, err := fs.ReadDir(abiFS, "abis")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Open resolves nameOrPath as an embedded ABI name first and as a JSON file otherwise.
func Open(nameOrPath string) (*Interface, error) {
	for _, name := range EmbeddedNames() {
		if name == nameOrPath {
			return Embedded(name)
		}
	}
	return LoadFile(nameOrPath)
}
