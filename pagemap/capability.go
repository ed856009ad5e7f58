//go:build !no_device_pages

package pagemap

// devicePagesCapability reports whether device-backed memory support is
// compiled in. Building with the no_device_pages tag switches it off, in which
// case Register always fails and Lookup always returns nil so that callers fall
// back to plain memory mapping without device semantics.
const devicePagesCapability = true
