//go:build !wtf_disable

package wtf

// masterEnable selects the real implementations of the event and scope
// types. Building with the wtf_disable tag turns every declaration and
// emission in the process into a no-op the compiler can eliminate.
const masterEnable = true
