package pagemap

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"golang.org/x/exp/slog"
)

// FaultOutcome is the result of dispatching a CPU fault on a device-backed
// frame to its region's fault handler.
type FaultOutcome int32

const (
	// FaultHandled indicates the frame was already CPU-accessible and no
	// migration was needed.
	FaultHandled FaultOutcome = iota
	// FaultMigrated indicates the handler migrated the data into CPU-accessible
	// memory and the faulting access can be retried by the caller.
	FaultMigrated
	// FaultSignalBus indicates the handler could not make the frame accessible
	// and the faulting execution context should receive a bus error. The
	// handler must not have mutated the frame's accessibility state.
	FaultSignalBus
	// FaultSignalOOM indicates the handler failed to allocate the system memory
	// needed for migration. This is a resource-exhaustion condition, distinct
	// from FaultSignalBus: callers respond to the two differently and they must
	// never be conflated.
	FaultSignalOOM

	faultOutcomeCount = int(FaultSignalOOM) + 1
)

var faultOutcomeMapping = map[FaultOutcome]string{
	FaultHandled:   "FaultHandled",
	FaultMigrated:  "FaultMigrated",
	FaultSignalBus: "FaultSignalBus",
	FaultSignalOOM: "FaultSignalOOM",
}

func (o FaultOutcome) String() string {
	str, ok := faultOutcomeMapping[o]
	if !ok {
		return fmt.Sprintf("FaultOutcome(%d)", int32(o))
	}
	return str
}

// AccessFlags describe the faulting access being dispatched
type AccessFlags int32

var accessFlagsMapping = devmem.NewFlagStringMapping[AccessFlags]()

func (f AccessFlags) Register(str string) {
	accessFlagsMapping.Register(f, str)
}
func (f AccessFlags) String() string {
	return accessFlagsMapping.FlagsToString(f)
}

const (
	// AccessRead indicates the faulting access was a read
	AccessRead AccessFlags = 1 << iota
	// AccessWrite indicates the faulting access was a write
	AccessWrite
	// AccessExecute indicates the faulting access was an instruction fetch
	AccessExecute
)

func init() {
	AccessRead.Register("AccessRead")
	AccessWrite.Register("AccessWrite")
	AccessExecute.Register("AccessExecute")
}

// FaultRequest carries one CPU fault to a region's fault handler.
type FaultRequest struct {
	// Region is the region owning the faulting frame
	Region *Region
	// Address is the faulting physical address. A handler migrating multiple
	// frames in one dispatch as an optimization must prioritize this address
	// over all the others. Migration of the remaining frames is best-effort.
	Address devmem.PhysAddr
	// Flags describe the faulting access
	Flags AccessFlags
}

// FaultHandler mediates CPU access to frames the CPU cannot touch directly.
// Regions of type devmem.MemoryDevicePrivate must supply one at registration.
type FaultHandler interface {
	// MigrateToRAM must move the data backing the faulting frame into
	// CPU-accessible memory and return FaultMigrated, or report FaultSignalBus
	// or FaultSignalOOM. It may block while migrating, but a handler that
	// cannot make progress must return one of the failure outcomes rather than
	// block indefinitely. There is no cancellation of an in-flight dispatch.
	MigrateToRAM(ctx context.Context, request *FaultRequest) (FaultOutcome, error)
}

// FreeHandler receives the free dispatch for a region's frames, letting the
// owning driver reclaim or recycle them under its own policy.
type FreeHandler interface {
	// FreeFrame is invoked exactly once each time a frame's ordinary-holder
	// count falls back to the "unused but still owned" floor. userData is the
	// value supplied in RegionCreateInfo.UserData.
	FreeFrame(f devmem.Frame, userData any)
}

// DispatchFault routes a CPU fault on a device-backed frame to the owning
// region's fault handler. The caller must hold pin across the call so that the
// dispatch cannot race the region's teardown. Dispatching through a released
// pin panics. Faults on CPU-accessible memory types return FaultHandled
// without consulting the handler.
func (r *Registry) DispatchFault(ctx context.Context, pin *RegionPin, addr devmem.PhysAddr, flags AccessFlags) (FaultOutcome, error) {
	if pin == nil {
		panic("fault dispatch requires a pinned region")
	}
	if pin.released.Load() {
		panic("fault dispatch through a released pin")
	}

	region := pin.region
	if !region.frameRange.Contains(addr.Frame()) {
		return FaultSignalBus, errors.Errorf("fault address 0x%x is outside %s", uint64(addr), region.frameRange)
	}

	if region.memoryType.CPUAccessible() {
		r.countFault(FaultHandled)
		return FaultHandled, nil
	}

	outcome, err := region.faultHandler.MigrateToRAM(ctx, &FaultRequest{
		Region:  region,
		Address: addr,
		Flags:   flags,
	})

	if _, known := faultOutcomeMapping[outcome]; !known {
		return FaultSignalBus, errors.Errorf("fault handler for %s returned unknown outcome %d", region.frameRange, int32(outcome))
	}

	r.countFault(outcome)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelDebug,
			"Registry::DispatchFault fault handler reported a failure",
			slog.String("outcome", outcome.String()),
			slog.Any("error", err))
	}
	return outcome, err
}
