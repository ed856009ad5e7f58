package pagemap

import (
	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/frametab"
	"github.com/devmemkit/pagemap/internal/utils"
	"github.com/google/btree"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific registry behaviors to activate or deactivate
type CreateFlags int32

var registryCreateFlagsMapping = devmem.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	registryCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return registryCreateFlagsMapping.FlagsToString(f)
}

const (
	// RegistryCreateExternallySynchronized ensures that this registry will not be
	// synchronized internally. The consumer must guarantee it is used from only one
	// thread at a time or is synchronized by some other mechanism, but performance
	// may improve because internal mutexes are not used.
	RegistryCreateExternallySynchronized CreateFlags = 1 << iota
	// RegistryCreateDisableDevicePages forces this registry instance to behave as
	// though device-backed memory support were compiled out: Register always fails
	// with devmem.ErrDevicePagesUnsupported and Lookup always returns nil. It
	// exists so consumers can exercise their plain-mapping fallback paths without
	// rebuilding with the no_device_pages tag.
	RegistryCreateDisableDevicePages
)

func init() {
	RegistryCreateExternallySynchronized.Register("RegistryCreateExternallySynchronized")
	RegistryCreateDisableDevicePages.Register("RegistryCreateDisableDevicePages")
}

// CreateOptions contains optional settings when creating a Registry
type CreateOptions struct {
	// Flags indicates specific registry behaviors to activate or deactivate
	Flags CreateFlags
}

const regionIndexDegree = 8

// New creates a Registry owning the device-backed regions of one memory
// subsystem. Registries are explicit instances rather than process-wide state,
// so several independent ones can coexist. Collaborators should receive the
// registry by reference.
//
// table - The frame-table collaborator that materializes per-frame bookkeeping
// for regions registered without their own metadata reservation
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, table frametab.Table, options CreateOptions) (*Registry, error) {
	if logger == nil {
		return nil, errors.New("a registry requires a logger")
	}
	if table == nil {
		return nil, errors.New("a registry requires a frame-table collaborator")
	}

	useMutex := options.Flags&RegistryCreateExternallySynchronized == 0

	registry := &Registry{
		logger:     logger,
		frameTable: table,
		capable:    devicePagesCapability && options.Flags&RegistryCreateDisableDevicePages == 0,
		regions: btree.NewG(regionIndexDegree, func(a, b *Region) bool {
			return a.frameRange.First < b.frameRange.First
		}),
	}
	registry.mutex = utils.OptionalRWMutex{UseMutex: useMutex}

	return registry, nil
}
