package constants

import "time"

const (
	SnapshotTTL   = 5 * time.Minute
	RosterTTL     = 5 * time.Minute
	MissionsTTL   = 10 * time.Minute
	LastSaveDelay = 10 * time.Second
)

const (
	// InactivityWindow is the default window after which an operator counts
	// as inactive for red-flag classification.
	InactivityWindow = 45 * 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// AuditLogCap bounds the audit log; every append trims to the most
	// recent entries.
	AuditLogCap = 100

	OperatorSearchLimit = 5
	DefaultTrendRange   = 30
)
