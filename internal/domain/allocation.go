package domain

// Allocation statuses for a product linked to a booking.
const (
	AllocationReserved  = "RESERVED"
	AllocationAllocated = "ALLOCATED"
	AllocationInstalled = "INSTALLED"
	AllocationReturned  = "RETURNED"
)

// allocationNext lists the legal moves out of each state. INSTALLED and
// RETURNED are terminal; nothing leads out of them.
var allocationNext = map[string][]string{
	AllocationReserved:  {AllocationAllocated, AllocationReturned},
	AllocationAllocated: {AllocationInstalled, AllocationReturned},
}

// ValidAllocation reports whether s names a known allocation status.
func ValidAllocation(s string) bool {
	switch s {
	case AllocationReserved, AllocationAllocated, AllocationInstalled, AllocationReturned:
		return true
	}
	return false
}

// CheckAllocationMove returns InvalidTransitionError unless from -> to is a
// listed transition.
func CheckAllocationMove(from, to string) error {
	for _, next := range allocationNext[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}
