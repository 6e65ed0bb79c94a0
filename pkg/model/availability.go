package model

type AvailabilityRule struct {
	OwnerID   string    `json:"owner_id,omitempty" bson:"owner_id"`
	DayOfWeek DayOfWeek `json:"day_of_week" bson:"day_of_week"`
	StartTime TimeOfDay `json:"start_time" bson:"start_time"`
	EndTime   TimeOfDay `json:"end_time" bson:"end_time"`
}

type AvailabilitySetupRequest struct {
	OwnerID string             `json:"owner_id" validate:"required,owner_id"`
	Rules   []AvailabilityRule `json:"rules" validate:"required"`
}

type UpdateRulesResult struct {
	Message string `json:"message"`
	Created bool   `json:"created"`
}

type Slot struct {
	StartDateTime string `json:"start_date_time"`
	EndDateTime   string `json:"end_date_time"`
}
