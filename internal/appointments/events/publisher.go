package events

import (
	"context"
	"time"

	"calendar/pkg/kafka"
	"calendar/pkg/middleware"
	"calendar/pkg/model"
)

const (
	EventTypeAppointmentBooked = "appointment.booked"
	SchemaVersion              = "1"
	Source                     = "calendar"
)

// AppointmentBooked is the payload published after a booking is confirmed.
type AppointmentBooked struct {
	AppointmentID string `json:"appointment_id"`
	OwnerID       string `json:"owner_id"`
	InviteeID     string `json:"invitee_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BookedAt      string `json:"booked_at"`
}

type Publisher interface {
	AppointmentBooked(ctx context.Context, appt model.Appointment) error
}

type NopPublisher struct{}

func (NopPublisher) AppointmentBooked(context.Context, model.Appointment) error { return nil }

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// AppointmentBooked publishes one event keyed by owner, so an owner's
// bookings stay ordered on a single partition.
func (p *KafkaPublisher) AppointmentBooked(ctx context.Context, appt model.Appointment) error {
	bookedAt := appt.CreatedAt
	if bookedAt.IsZero() {
		bookedAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(appt.OwnerID).
		WithEventID(appt.AppointmentID).
		WithEventType(EventTypeAppointmentBooked).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithValue(AppointmentBooked{
			AppointmentID: appt.AppointmentID,
			OwnerID:       appt.OwnerID,
			InviteeID:     appt.InviteeID,
			StartTime:     model.FormatDateTime(appt.StartTime),
			EndTime:       model.FormatDateTime(appt.EndTime),
			BookedAt:      bookedAt.Format(time.RFC3339),
		}).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}
