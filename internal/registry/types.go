package registry

import (
	"errors"
	"strings"
)

// Role of an account. Admins operate on every record; users only on their own.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// BotType selects the startup-file template written at provisioning time.
type BotType string

const (
	TypeDiscord  BotType = "discord"
	TypeTelegram BotType = "telegram"
	TypeGeneric  BotType = "generic"
)

// NormalizeType maps arbitrary input to a known type. Unknown values fall
// back to the generic template.
func NormalizeType(s string) BotType {
	switch t := BotType(strings.ToLower(s)); t {
	case TypeDiscord, TypeTelegram:
		return t
	default:
		return TypeGeneric
	}
}

// Status is the volatile run state of a bot. It is never persisted; every
// load starts from StatusStopped.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// Resource tier forced onto restricted-plan provisioning. The request's ram
// and storage fields are not trusted input for non-admin callers.
const (
	RestrictedRAM     = "250MB"
	RestrictedStorage = "1GB"
	UserBotQuota      = 1
)

// Bot is one tenant-owned managed program. RAM and Storage are declared
// metadata only, not enforced limits. Env holds the owner-supplied secret
// injected into the process environment on start.
type Bot struct {
	ID      string  `json:"id"`
	Owner   string  `json:"owner"`
	Name    string  `json:"name"`
	Type    BotType `json:"type"`
	RAM     string  `json:"ram"`
	Storage string  `json:"storage"`
	Env     string  `json:"env,omitempty"`
	Status  Status  `json:"status,omitempty"`
}

// Account is a panel login. Password is an opaque comparison value kept
// verbatim; the credential model is intentionally minimal.
type Account struct {
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

var (
	ErrNotFound         = errors.New("not found")
	ErrQuotaExceeded    = errors.New("bot quota exceeded")
	ErrUserExists       = errors.New("user already exists")
	ErrProtectedAccount = errors.New("bootstrap admin cannot be deleted")
)
