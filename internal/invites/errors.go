package invites

import "errors"

var (
	// ErrFetchFailure means the platform could not return a guild's invites.
	// The tracker treats it as an empty snapshot.
	ErrFetchFailure = errors.New("invite fetch failed")

	// ErrPersistenceFailure means a durable write failed. The in-memory
	// tables stay authoritative until the next successful write.
	ErrPersistenceFailure = errors.New("persisting invite data failed")

	// ErrRoleGrantFailure is reported per milestone role.
	ErrRoleGrantFailure = errors.New("role grant failed")

	// ErrConfigurationMissing is returned by settings lookups with no value.
	ErrConfigurationMissing = errors.New("configuration missing")
)
