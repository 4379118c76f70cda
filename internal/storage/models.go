package storage

import (
	"time"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

type EmailType string

const (
	EmailInitial  EmailType = "initial"
	EmailFollowup EmailType = "followup"
)

type Campaign struct {
	ID             int64     `json:"id"`
	JobTitle       string    `json:"job_title"`
	Company        string    `json:"company"`
	JobDescription string    `json:"job_description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmailLog is one delivery attempt. FollowupScheduledAt is only set for initial
// emails that went out.
type EmailLog struct {
	ID                  int64
	CampaignID          int64
	ContactID           int64
	Type                EmailType
	Subject             string
	Body                string
	SentAt              time.Time
	IsSent              bool
	FollowupSent        bool
	FollowupScheduledAt *time.Time
	ErrorMessage        string
}

// DueFollowup is an initial email whose follow-up is ready to go out.
type DueFollowup struct {
	LogID     int64
	SentAt    time.Time
	ContactID int64
	Contact   contacts.Contact
	Campaign  Campaign
}

type Stats struct {
	Campaign      Campaign `json:"campaign"`
	InitialSent   int      `json:"initial_sent"`
	FollowupsSent int      `json:"followups_sent"`
	// FollowupRate is a percentage of initial emails that got a follow-up.
	FollowupRate float64 `json:"followup_rate"`
}
