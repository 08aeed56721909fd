package entities

// Caller identifies who is invoking an engine operation and what they may do
type Caller struct {
	UserID int64
	Admin  bool
	System bool
}

// UserCaller returns a caller without administrative capability
func UserCaller(userID int64) Caller {
	return Caller{UserID: userID}
}

// AdminCaller returns a caller holding the administrative capability
func AdminCaller(userID int64) Caller {
	return Caller{UserID: userID, Admin: true}
}

// SystemCaller returns the caller used by automated result ingestion
func SystemCaller(actorID int64) Caller {
	return Caller{UserID: actorID, System: true}
}

// IsPrivileged checks for the administrative or system capability
func (c Caller) IsPrivileged() bool {
	return c.Admin || c.System
}
