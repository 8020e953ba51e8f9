package storage

import "errors"

// Lookup misses are typed results so handlers can map them onto HTTP
// statuses without inspecting driver errors.
var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrCustomerNotFound    = errors.New("customer not found")
)
