package model

import (
	"encoding/json"
	"time"
)

type Appointment struct {
	AppointmentID string    `json:"appointment_id" bson:"_id"`
	OwnerID       string    `json:"owner_id" bson:"owner_id"`
	InviteeID     string    `json:"invitee_id" bson:"invitee_id"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time" bson:"end_time"`
	CreatedAt     time.Time `json:"-" bson:"created_at"`
}

func (a Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AppointmentID string `json:"appointment_id"`
		OwnerID       string `json:"owner_id"`
		InviteeID     string `json:"invitee_id"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
	}{a.AppointmentID, a.OwnerID, a.InviteeID, FormatDateTime(a.StartTime), FormatDateTime(a.EndTime)})
}

type BookAppointmentRequest struct {
	OwnerID       string `json:"owner_id" validate:"required,owner_id"`
	InviteeID     string `json:"invitee_id" validate:"required,owner_id"`
	StartDateTime string `json:"start_date_time" validate:"required,datetime=2006-01-02 15:04:05"`
}

type BookResult struct {
	AppointmentID string `json:"appointment_id"`
	NewlyCreated  bool   `json:"newly_created"`
	Message       string `json:"message"`
}

type UpcomingAppointment struct {
	Appointment
	InviteeName  string `json:"invitee_name,omitempty"`
	InviteeEmail string `json:"invitee_email,omitempty"`
}

func (u UpcomingAppointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AppointmentID string `json:"appointment_id"`
		OwnerID       string `json:"owner_id"`
		InviteeID     string `json:"invitee_id"`
		InviteeName   string `json:"invitee_name,omitempty"`
		InviteeEmail  string `json:"invitee_email,omitempty"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
	}{
		u.AppointmentID, u.OwnerID, u.InviteeID, u.InviteeName, u.InviteeEmail,
		FormatDateTime(u.StartTime), FormatDateTime(u.EndTime),
	})
}
