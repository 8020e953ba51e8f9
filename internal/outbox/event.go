package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the booking flows. Consumers (notification
// delivery, analytics) subscribe per topic.
const (
	EventAppointmentBooked         = "booking.appointment.booked.v1"
	EventAppointmentCancelled      = "booking.appointment.cancelled.v1"
	EventAppointmentOwnerCancelled = "booking.appointment.owner_cancelled.v1"
	EventAppointmentStatusChanged  = "booking.appointment.status_changed.v1"
	EventCustomerAutoBlocked       = "booking.customer.autoblocked.v1"
)
