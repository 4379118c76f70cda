// Package storage persists contacts, campaigns and email logs in Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    linkedin_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS email_campaigns (
    id BIGSERIAL PRIMARY KEY,
    job_title TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    job_description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS email_logs (
    id BIGSERIAL PRIMARY KEY,
    campaign_id BIGINT NOT NULL REFERENCES email_campaigns(id),
    contact_id BIGINT NOT NULL REFERENCES contacts(id),
    email_type TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_sent BOOLEAN NOT NULL DEFAULT FALSE,
    followup_sent BOOLEAN NOT NULL DEFAULT FALSE,
    followup_scheduled_at TIMESTAMPTZ,
    error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS email_logs_due_idx
    ON email_logs (followup_scheduled_at)
    WHERE email_type = 'initial' AND is_sent AND NOT followup_sent;
`

// Postgres implements the campaign store on top of database/sql.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
	psql   sq.StatementBuilderType
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is not configured")
	}

	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db, logger), nil
}

// New wires an existing sql.DB.
func New(db *sql.DB, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{
		db:     db,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// Migrate creates the tables when they do not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// UpsertContact stores c and returns its id. A contact with a known email keeps
// its id and gets the new details.
func (p *Postgres) UpsertContact(ctx context.Context, c *contacts.Contact) (int64, error) {
	query, args, err := p.psql.
		Insert("contacts").
		Columns("name", "email", "title", "company", "linkedin_url").
		Values(c.Name, c.Email, c.Title, c.Company, c.LinkedIn).
		Suffix(`ON CONFLICT (email) DO UPDATE
              SET name = EXCLUDED.name,
                  title = EXCLUDED.title,
                  company = EXCLUDED.company,
                  linkedin_url = EXCLUDED.linkedin_url
              RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert contact: %w", err)
	}

	var id int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert contact %s: %w", c.Email, err)
	}
	return id, nil
}

func (p *Postgres) CreateCampaign(ctx context.Context, c Campaign) (int64, error) {
	query, args, err := p.psql.
		Insert("email_campaigns").
		Columns("job_title", "company", "job_description").
		Values(c.JobTitle, c.Company, c.JobDescription).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build create campaign: %w", err)
	}

	var id int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create campaign: %w", err)
	}

	p.logger.Debug("campaign created", zap.Int64("campaign_id", id))
	return id, nil
}

func (p *Postgres) LogEmail(ctx context.Context, l EmailLog) (int64, error) {
	var scheduled sql.NullTime
	if l.FollowupScheduledAt != nil {
		scheduled = sql.NullTime{Time: *l.FollowupScheduledAt, Valid: true}
	}

	query, args, err := p.psql.
		Insert("email_logs").
		Columns("campaign_id", "contact_id", "email_type", "subject", "body",
			"sent_at", "is_sent", "followup_scheduled_at", "error_message").
		Values(l.CampaignID, l.ContactID, string(l.Type), l.Subject, l.Body,
			l.SentAt, l.IsSent, scheduled, l.ErrorMessage).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build log email: %w", err)
	}

	var id int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("log email: %w", err)
	}
	return id, nil
}

// DueFollowups returns sent initial emails without a follow-up whose schedule is
// at or before now, oldest first.
func (p *Postgres) DueFollowups(ctx context.Context, now time.Time) ([]DueFollowup, error) {
	query, args, err := p.psql.
		Select(
			"l.id", "l.sent_at",
			"c.id", "c.name", "c.email", "c.title", "c.company", "c.linkedin_url",
			"e.id", "e.job_title", "e.company", "e.job_description", "e.created_at",
		).
		From("email_logs l").
		Join("contacts c ON c.id = l.contact_id").
		Join("email_campaigns e ON e.id = l.campaign_id").
		Where(sq.Eq{
			"l.email_type":    string(EmailInitial),
			"l.is_sent":       true,
			"l.followup_sent": false,
		}).
		Where(sq.LtOrEq{"l.followup_scheduled_at": now}).
		OrderBy("l.followup_scheduled_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due followups: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due followups: %w", err)
	}
	defer rows.Close()

	var due []DueFollowup
	for rows.Next() {
		var d DueFollowup
		if err := rows.Scan(
			&d.LogID, &d.SentAt,
			&d.ContactID, &d.Contact.Name, &d.Contact.Email, &d.Contact.Title, &d.Contact.Company, &d.Contact.LinkedIn,
			&d.Campaign.ID, &d.Campaign.JobTitle, &d.Campaign.Company, &d.Campaign.JobDescription, &d.Campaign.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan due followup: %w", err)
		}
		due = append(due, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return due, nil
}

func (p *Postgres) MarkFollowupSent(ctx context.Context, logID int64) error {
	query, args, err := p.psql.
		Update("email_logs").
		Set("followup_sent", true).
		Where(sq.Eq{"id": logID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark followup: %w", err)
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark followup sent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("email log %d: %w", logID, ErrNotFound)
	}
	return nil
}

// ContactedEmails lists addresses that already received an initial email. An
// empty company matches every campaign.
func (p *Postgres) ContactedEmails(ctx context.Context, company string) ([]string, error) {
	builder := p.psql.
		Select("DISTINCT c.email").
		From("email_logs l").
		Join("contacts c ON c.id = l.contact_id").
		Join("email_campaigns e ON e.id = l.campaign_id").
		Where(sq.Eq{"l.email_type": string(EmailInitial), "l.is_sent": true})
	if company = strings.TrimSpace(company); company != "" {
		builder = builder.Where("LOWER(e.company) = LOWER(?)", company)
	}

	query, args, err := builder.OrderBy("c.email").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build contacted emails: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacted emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return emails, nil
}

func (p *Postgres) Campaign(ctx context.Context, id int64) (Campaign, error) {
	query, args, err := p.psql.
		Select("id", "job_title", "company", "job_description", "created_at").
		From("email_campaigns").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Campaign{}, fmt.Errorf("build campaign: %w", err)
	}

	var c Campaign
	err = p.db.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.JobTitle, &c.Company, &c.JobDescription, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, fmt.Errorf("campaign %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Campaign{}, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

// Campaigns returns every campaign, newest first.
func (p *Postgres) Campaigns(ctx context.Context) ([]Campaign, error) {
	query, args, err := p.psql.
		Select("id", "job_title", "company", "job_description", "created_at").
		From("email_campaigns").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build campaigns: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.JobTitle, &c.Company, &c.JobDescription, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return campaigns, nil
}

func (p *Postgres) CampaignStats(ctx context.Context, id int64) (Stats, error) {
	campaign, err := p.Campaign(ctx, id)
	if err != nil {
		return Stats{}, err
	}

	query, args, err := p.psql.
		Select(
			"COUNT(*) FILTER (WHERE email_type = 'initial' AND is_sent)",
			"COUNT(*) FILTER (WHERE email_type = 'followup' AND is_sent)",
		).
		From("email_logs").
		Where(sq.Eq{"campaign_id": id}).
		ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build stats: %w", err)
	}

	stats := Stats{Campaign: campaign}
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&stats.InitialSent, &stats.FollowupsSent); err != nil {
		return Stats{}, fmt.Errorf("campaign %d stats: %w", id, err)
	}

	if stats.InitialSent > 0 {
		stats.FollowupRate = float64(stats.FollowupsSent) / float64(stats.InitialSent) * 100
	}
	return stats, nil
}
