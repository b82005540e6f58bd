// Package unsafehelpers centralises all unavoidable usage of the `unsafe`
// standard-library package so the rest of oha stays clean and easier to
// audit. Every helper documents its pre/post-conditions.
//
// DISCLAIMER: these helpers deliberately step outside the Go memory-safety
// model for zero-allocation byte views and pointer-arithmetic-based slot
// recovery. Use only inside this repository; misuse leads to subtle data
// corruption.
//
// © 2025 oha authors. MIT License.
package unsafehelpers

import "unsafe"

// ByteSliceFrom returns a []byte view of raw memory starting at ptr with the
// given length. Used for hashing scalar keys where only a pointer and size
// are known at runtime.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), length)
}

// SlotIndex recovers the index of the slot a field pointer belongs to, given
// the address of slot zero in a densely packed array and the stride (size)
// of one slot. It mirrors the offsetof-based reverse lookups the original
// C implementation performs on struct value_bucket/key_bucket pointers:
// there the payload pointer is walked back to the enclosing bucket by
// subtracting a compile-time offsetof; here the enclosing "bucket" is one
// element of a Go slice, so the same walk-back is a pointer subtraction
// followed by a division by the element stride.
//
// fieldPtr must point somewhere inside slotZero's slot array, at the same
// byte offset within every slot (i.e. it was obtained by taking the address
// of the same field on some element of that array). Passing a pointer that
// does not satisfy this precondition yields a nonsensical index.
func SlotIndex(slotZero unsafe.Pointer, fieldPtr unsafe.Pointer, stride uintptr) int {
	delta := uintptr(fieldPtr) - uintptr(slotZero)
	return int(delta / stride)
}
