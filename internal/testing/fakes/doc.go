// Package fakes provides in-memory implementations of the repository and
// cache interfaces for service and controller tests.
//
// # Repositories
//
// ProfileRepository and UserRepository mirror the constraints of the
// Postgres schema: unique custom URLs, one profile per user, unique emails
// and contiguous link positions.
//
//	profiles := fakes.NewProfileRepository()
//	users := fakes.NewUserRepository()
//
// Set Err on a fake to make every call fail:
//
//	profiles.Err = errors.New("connection refused")
//
// # Cache
//
//	c := fakes.NewCache()
//	c.Data["profile:jane"] // raw stored values
package fakes
