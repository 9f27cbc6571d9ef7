package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"linkpage-be/internal/entities"
	"linkpage-be/internal/repository"
)

// ============================================================================
// Profiles
// ============================================================================

// ProfileRepository is an in-memory repository.ProfileRepository
type ProfileRepository struct {
	mu       sync.Mutex
	seq      int
	profiles map[string]*entities.Profile // by id
	clicks   map[string][]time.Time       // by link id

	// Err, when set, is returned by every method
	Err error
	// UpdateErr, when set, is returned by Update and UpdateWithLinks
	UpdateErr error
	Now       func() time.Time
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[string]*entities.Profile),
		clicks:   make(map[string][]time.Time),
		Now:      time.Now,
	}
}

func cloneProfile(p *entities.Profile) *entities.Profile {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.SocialLinks = make([]*entities.SocialLink, len(p.SocialLinks))
	for i, l := range p.SocialLinks {
		link := *l
		c.SocialLinks[i] = &link
	}
	return &c
}

func (r *ProfileRepository) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *ProfileRepository) byField(match func(*entities.Profile) bool) *entities.Profile {
	for _, p := range r.profiles {
		if match(p) {
			return p
		}
	}
	return nil
}

func (r *ProfileRepository) linkOwner(linkID string) *entities.Profile {
	return r.byField(func(p *entities.Profile) bool { return p.FindLink(linkID) != nil })
}

func renumber(links []*entities.SocialLink) {
	for i, l := range links {
		l.Position = i
	}
}

// Count returns the number of stored profiles
func (r *ProfileRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// Clicks returns the number of recorded clicks for a link
func (r *ProfileRepository) Clicks(linkID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks[linkID])
}

func (r *ProfileRepository) Create(ctx context.Context, profile *entities.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if r.byField(func(p *entities.Profile) bool {
		return p.CustomURL == profile.CustomURL || p.UserID == profile.UserID
	}) != nil {
		return repository.ErrDuplicate
	}

	now := r.Now()
	profile.ID = r.nextID("profile")
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Tags == nil {
		profile.Tags = []string{}
	}
	for i, l := range profile.SocialLinks {
		l.ProfileID = profile.ID
		l.Position = i
		l.CreatedAt = now
	}
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *ProfileRepository) FindByCustomURL(ctx context.Context, customURL string) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p := r.byField(func(p *entities.Profile) bool { return p.CustomURL == customURL })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p := r.byField(func(p *entities.Profile) bool { return p.UserID == userID })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) ExistsCustomURL(ctx context.Context, customURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	return r.byField(func(p *entities.Profile) bool { return p.CustomURL == customURL }) != nil, nil
}

// Update stores the scalar fields and tags; links are left untouched
func (r *ProfileRepository) Update(ctx context.Context, profile *entities.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.checkUpdate(profile)
	if err != nil {
		return err
	}
	r.applyUpdate(stored, profile)
	return nil
}

func (r *ProfileRepository) checkUpdate(profile *entities.Profile) (*entities.Profile, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	stored, ok := r.profiles[profile.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.byField(func(p *entities.Profile) bool {
		return p.ID != profile.ID && p.CustomURL == profile.CustomURL
	}) != nil {
		return nil, repository.ErrDuplicate
	}
	return stored, nil
}

func (r *ProfileRepository) applyUpdate(stored, profile *entities.Profile) {
	stored.CustomURL = profile.CustomURL
	stored.Username = profile.Username
	stored.AvatarURL = profile.AvatarURL
	stored.BackgroundURL = profile.BackgroundURL
	stored.About = profile.About
	stored.Tags = append([]string{}, profile.Tags...)
	stored.UpdatedAt = r.Now()
	profile.UpdatedAt = stored.UpdatedAt
}

func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	p := r.byField(func(p *entities.Profile) bool { return p.UserID == userID })
	if p == nil {
		return repository.ErrNotFound
	}
	for _, l := range p.SocialLinks {
		delete(r.clicks, l.ID)
	}
	delete(r.profiles, p.ID)
	return nil
}

// UpdateWithLinks applies Update and replaces the link list, or changes nothing
func (r *ProfileRepository) UpdateWithLinks(ctx context.Context, profile *entities.Profile, links []*entities.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.checkUpdate(profile)
	if err != nil {
		return err
	}
	r.applyUpdate(stored, profile)

	now := r.Now()
	replaced := make([]*entities.SocialLink, len(links))
	for i, l := range links {
		l.ProfileID = profile.ID
		l.Position = i
		if existing := stored.FindLink(l.ID); existing != nil {
			l.CreatedAt = existing.CreatedAt
		} else {
			l.CreatedAt = now
		}
		link := *l
		replaced[i] = &link
	}
	stored.SocialLinks = replaced
	profile.SocialLinks = links
	return nil
}

func (r *ProfileRepository) AddSocialLink(ctx context.Context, link *entities.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.profiles[link.ProfileID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.linkOwner(link.ID) != nil {
		return repository.ErrDuplicate
	}

	link.Position = len(stored.SocialLinks)
	link.CreatedAt = r.Now()
	added := *link
	stored.SocialLinks = append(stored.SocialLinks, &added)
	return nil
}

func (r *ProfileRepository) UpdateSocialLink(ctx context.Context, link *entities.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.profiles[link.ProfileID]
	if !ok {
		return repository.ErrNotFound
	}
	existing := stored.FindLink(link.ID)
	if existing == nil {
		return repository.ErrNotFound
	}
	existing.Platform = link.Platform
	existing.URL = link.URL
	return nil
}

func (r *ProfileRepository) DeleteSocialLink(ctx context.Context, profileID, linkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}

	kept := stored.SocialLinks[:0]
	found := false
	for _, l := range stored.SocialLinks {
		if l.ID == linkID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return repository.ErrNotFound
	}
	renumber(kept)
	stored.SocialLinks = kept
	delete(r.clicks, linkID)
	return nil
}

func (r *ProfileRepository) ReorderSocialLinks(ctx context.Context, profileID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}

	reordered := make([]*entities.SocialLink, 0, len(ids))
	for _, id := range ids {
		l := stored.FindLink(id)
		if l == nil {
			return repository.ErrNotFound
		}
		reordered = append(reordered, l)
	}
	if len(reordered) != len(stored.SocialLinks) {
		return repository.ErrNotFound
	}
	renumber(reordered)
	stored.SocialLinks = reordered
	return nil
}

func (r *ProfileRepository) SearchByTag(ctx context.Context, tag string, limit, offset int) ([]*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var matches []*entities.Profile
	for _, p := range r.profiles {
		for _, t := range p.Tags {
			if t == tag {
				matches = append(matches, cloneProfile(p))
				break
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CustomURL < matches[j].CustomURL })

	if offset > len(matches) {
		return []*entities.Profile{}, nil
	}
	matches = matches[offset:]
	if limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *ProfileRepository) RecordLinkClick(ctx context.Context, linkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.linkOwner(linkID) == nil {
		return repository.ErrNotFound
	}
	r.clicks[linkID] = append(r.clicks[linkID], r.Now())
	return nil
}

// GetClickAnalytics groups clicks into hourly buckets
func (r *ProfileRepository) GetClickAnalytics(ctx context.Context, profileID string, hours int) ([]*entities.ClickBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	stored, ok := r.profiles[profileID]
	if !ok {
		return []*entities.ClickBucket{}, nil
	}

	since := r.Now().Add(-time.Duration(hours) * time.Hour)
	counts := make(map[time.Time]int)
	for _, l := range stored.SocialLinks {
		for _, at := range r.clicks[l.ID] {
			if at.After(since) {
				counts[at.Truncate(time.Hour)]++
			}
		}
	}

	buckets := make([]*entities.ClickBucket, 0, len(counts))
	for at, n := range counts {
		buckets = append(buckets, &entities.ClickBucket{Time: at, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Time.Before(buckets[j].Time) })
	return buckets, nil
}

// ============================================================================
// Users
// ============================================================================

// UserRepository is an in-memory repository.UserRepository
type UserRepository struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entities.User // by id

	Err error
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entities.User)}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Email == email {
			return nil, repository.ErrDuplicate
		}
	}

	r.seq++
	now := time.Now()
	user := &entities.User{
		ID:           fmt.Sprintf("user-%d", r.seq),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	c := *user
	return &c, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}
