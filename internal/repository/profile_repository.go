package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"linkpage-be/internal/entities"
)

// MaxSearchLimit caps the page size of SearchByTag
const MaxSearchLimit = 50

// ProfileRepository defines the interface for profile database operations.
// Returned profiles always carry their social links ordered by position.
type ProfileRepository interface {
	Create(ctx context.Context, profile *entities.Profile) error
	FindByCustomURL(ctx context.Context, customURL string) (*entities.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*entities.Profile, error)
	ExistsCustomURL(ctx context.Context, customURL string) (bool, error)
	Update(ctx context.Context, profile *entities.Profile) error
	Delete(ctx context.Context, userID string) error
	UpdateWithLinks(ctx context.Context, profile *entities.Profile, links []*entities.SocialLink) error
	AddSocialLink(ctx context.Context, link *entities.SocialLink) error
	UpdateSocialLink(ctx context.Context, link *entities.SocialLink) error
	DeleteSocialLink(ctx context.Context, profileID, linkID string) error
	ReorderSocialLinks(ctx context.Context, profileID string, ids []string) error
	SearchByTag(ctx context.Context, tag string, limit, offset int) ([]*entities.Profile, error)
	RecordLinkClick(ctx context.Context, linkID string) error
	GetClickAnalytics(ctx context.Context, profileID string, hours int) ([]*entities.ClickBucket, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, user_id, custom_url, username, avatar_url, background_url, about, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*entities.Profile, error) {
	var p entities.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CustomURL,
		&p.Username,
		&p.AvatarURL,
		&p.BackgroundURL,
		&p.About,
		pq.Array(&p.Tags),
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.SocialLinks = []*entities.SocialLink{}
	return &p, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// Create inserts the profile and its links in one transaction. Link
// positions follow slice order. A taken custom URL or a second profile for
// the same user returns ErrDuplicate.
func (r *profileRepository) Create(ctx context.Context, profile *entities.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO profiles (user_id, custom_url, username, avatar_url, background_url, about, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		profile.UserID,
		profile.CustomURL,
		profile.Username,
		profile.AvatarURL,
		profile.BackgroundURL,
		profile.About,
		pq.Array(nonNilTags(profile.Tags)),
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := upsertLinks(ctx, tx, profile.ID, profile.SocialLinks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile: %w", err)
	}
	return nil
}

// upsertLinks writes links at positions 0..n-1, updating rows that already exist
func upsertLinks(ctx context.Context, tx *sql.Tx, profileID string, links []*entities.SocialLink) error {
	query := `
		INSERT INTO social_links (id, profile_id, platform, url, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET platform = EXCLUDED.platform, url = EXCLUDED.url, position = EXCLUDED.position
		RETURNING created_at
	`
	for i, link := range links {
		link.ProfileID = profileID
		link.Position = i
		err := tx.QueryRowContext(ctx, query, link.ID, profileID, link.Platform, link.URL, link.Position).
			Scan(&link.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save social link: %w", err)
		}
	}
	return nil
}

func (r *profileRepository) FindByCustomURL(ctx context.Context, customURL string) (*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE custom_url = $1`
	return r.findOne(ctx, query, customURL)
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID string) (*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return r.findOne(ctx, query, userID)
}

func (r *profileRepository) findOne(ctx context.Context, query string, arg interface{}) (*entities.Profile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := r.loadLinks(ctx, []*entities.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

// loadLinks fills SocialLinks of every profile with one query
func (r *profileRepository) loadLinks(ctx context.Context, profiles []*entities.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, len(profiles))
	byID := make(map[string]*entities.Profile, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	query := `
		SELECT id, profile_id, platform, url, position, created_at
		FROM social_links
		WHERE profile_id = ANY($1::uuid[])
		ORDER BY profile_id, position
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load social links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link entities.SocialLink
		if err := rows.Scan(
			&link.ID,
			&link.ProfileID,
			&link.Platform,
			&link.URL,
			&link.Position,
			&link.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan social link: %w", err)
		}
		if p, ok := byID[link.ProfileID]; ok {
			p.SocialLinks = append(p.SocialLinks, &link)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating social links: %w", err)
	}
	return nil
}

func (r *profileRepository) ExistsCustomURL(ctx context.Context, customURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE custom_url = $1)`, customURL).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check custom url: %w", err)
	}
	return exists, nil
}

// Update writes the display fields, custom URL and tags. Links are written
// by the dedicated link methods or by UpdateWithLinks.
func (r *profileRepository) Update(ctx context.Context, profile *entities.Profile) error {
	return updateProfileRow(ctx, r.db, profile)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func updateProfileRow(ctx context.Context, q queryRower, profile *entities.Profile) error {
	query := `
		UPDATE profiles
		SET custom_url = $1, username = $2, avatar_url = $3, background_url = $4, about = $5, tags = $6,
		    updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := q.QueryRowContext(ctx, query,
		profile.CustomURL,
		profile.Username,
		profile.AvatarURL,
		profile.BackgroundURL,
		profile.About,
		pq.Array(nonNilTags(profile.Tags)),
		profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return requireAffected(result)
}

// UpdateWithLinks writes the profile fields like Update and makes links the
// complete, ordered link list of the profile, all in one transaction. Links
// whose id is absent from the new list are removed.
func (r *profileRepository) UpdateWithLinks(ctx context.Context, profile *entities.Profile, links []*entities.SocialLink) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateProfileRow(ctx, tx, profile); err != nil {
		return err
	}

	keep := make([]string, 0, len(links))
	for _, link := range links {
		keep = append(keep, link.ID)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM social_links WHERE profile_id = $1 AND NOT (id = ANY($2::uuid[]))`,
		profile.ID, pq.Array(keep),
	)
	if err != nil {
		return fmt.Errorf("failed to remove social links: %w", err)
	}

	if err := upsertLinks(ctx, tx, profile.ID, links); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile update: %w", err)
	}
	profile.SocialLinks = links
	return nil
}

// AddSocialLink appends the link after the profile's last link
func (r *profileRepository) AddSocialLink(ctx context.Context, link *entities.SocialLink) error {
	query := `
		INSERT INTO social_links (id, profile_id, platform, url, position)
		SELECT $1::uuid, $2::uuid, $3, $4, COALESCE(MAX(position) + 1, 0)
		FROM social_links
		WHERE profile_id = $2::uuid
		RETURNING position, created_at
	`
	err := r.db.QueryRowContext(ctx, query, link.ID, link.ProfileID, link.Platform, link.URL).
		Scan(&link.Position, &link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add social link: %w", err)
	}
	return nil
}

func (r *profileRepository) UpdateSocialLink(ctx context.Context, link *entities.SocialLink) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE social_links SET platform = $1, url = $2 WHERE id = $3 AND profile_id = $4`,
		link.Platform, link.URL, link.ID, link.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update social link: %w", err)
	}
	return requireAffected(result)
}

// DeleteSocialLink removes a link and closes the gap in positions
func (r *profileRepository) DeleteSocialLink(ctx context.Context, profileID, linkID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM social_links WHERE id = $1 AND profile_id = $2 RETURNING position`,
		linkID, profileID,
	).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete social link: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE social_links SET position = position - 1 WHERE profile_id = $1 AND position > $2`,
		profileID, position,
	)
	if err != nil {
		return fmt.Errorf("failed to compact link positions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link deletion: %w", err)
	}
	return nil
}

// ReorderSocialLinks sets each link's position to its index in ids. Every id
// must belong to the profile, otherwise nothing changes and ErrNotFound is returned.
func (r *profileRepository) ReorderSocialLinks(ctx context.Context, profileID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE social_links AS s
		SET position = o.ord - 1
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE s.id = o.id AND s.profile_id = $1
	`
	result, err := tx.ExecContext(ctx, query, profileID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to reorder social links: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected != int64(len(ids)) {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link order: %w", err)
	}
	return nil
}

// SearchByTag lists profiles carrying tag, most recently updated first
func (r *profileRepository) SearchByTag(ctx context.Context, tag string, limit, offset int) ([]*entities.Profile, error) {
	if limit <= 0 || limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE $1 = ANY(tags)
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, tag, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*entities.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	if err := r.loadLinks(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// RecordLinkClick logs one click on the link
func (r *profileRepository) RecordLinkClick(ctx context.Context, linkID string) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO link_clicks (link_id, profile_id)
		SELECT id, profile_id FROM social_links WHERE id = $1
	`, linkID)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return requireAffected(result)
}

// clickBucketWidth picks the bucket size for an analytics window
func clickBucketWidth(hours int) string {
	switch {
	case hours <= 6:
		return "10 minutes"
	case hours <= 12:
		return "30 minutes"
	case hours <= 24:
		return "1 hour"
	case hours <= 72:
		return "6 hours"
	default:
		return "1 day"
	}
}

// GetClickAnalytics counts the profile's link clicks over the last hours,
// grouped into UTC-aligned buckets
func (r *profileRepository) GetClickAnalytics(ctx context.Context, profileID string, hours int) ([]*entities.ClickBucket, error) {
	query := `
		SELECT date_bin($3::interval, clicked_at, TIMESTAMPTZ '2000-01-01 00:00:00+00') AS time_bucket,
		       COUNT(*) AS click_count
		FROM link_clicks
		WHERE profile_id = $1
		AND clicked_at >= NOW() - make_interval(hours => $2)
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`
	rows, err := r.db.QueryContext(ctx, query, profileID, hours, clickBucketWidth(hours))
	if err != nil {
		return nil, fmt.Errorf("failed to get click analytics: %w", err)
	}
	defer rows.Close()

	buckets := []*entities.ClickBucket{}
	for rows.Next() {
		var b entities.ClickBucket
		if err := rows.Scan(&b.Time, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan analytics: %w", err)
		}
		b.Time = b.Time.UTC()
		buckets = append(buckets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics: %w", err)
	}
	return buckets, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
