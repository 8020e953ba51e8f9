package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	for _, sentinel := range []error{ErrSlotNotFound, ErrAppointmentNotFound, ErrCustomerNotFound} {
		wrapped := fmt.Errorf("load: %w", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Fatalf("wrapped %v must still match via errors.Is", sentinel)
		}
	}
}
