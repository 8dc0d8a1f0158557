package registry

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

const (
	botsFile     = "servers.json"
	accountsFile = "users.json"
)

// Registry owns every Bot and Account record. All access goes through its
// lock; the supervisor holds bot identifiers only, never record pointers.
type Registry struct {
	mu        sync.RWMutex
	dataDir   string
	bots      map[string]*Bot
	accounts  map[string]Account
	bootAdmin string
	lastID    int64
}

// Load reads the persisted bot and account maps from dataDir. A corrupted
// file is backed up to <file>.bak and replaced with an empty map; load never
// fails the daemon for that reason. Bot statuses are forced to stopped:
// process state does not survive a restart of the panel. If no accounts
// exist the bootstrap admin is created.
func Load(dataDir, adminUser, adminPass string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, err
	}
	r := &Registry{
		dataDir:   dataDir,
		bots:      make(map[string]*Bot),
		accounts:  make(map[string]Account),
		bootAdmin: adminUser,
	}

	loadJSON(filepath.Join(dataDir, botsFile), &r.bots)
	for id, b := range r.bots {
		b.ID = id
		b.Status = StatusStopped
	}
	loadJSON(filepath.Join(dataDir, accountsFile), &r.accounts)

	if len(r.accounts) == 0 {
		r.accounts[adminUser] = Account{Password: adminPass, Role: RoleAdmin}
		if err := r.saveAccountsLocked(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// loadJSON fills dst from path. Unreadable or unparsable files are backed up
// and dst is left empty.
func loadJSON[T any](path string, dst *map[string]T) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("registry: read failed", "file", path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Error("registry: corrupted file, backing up and resetting", "file", path, "error", err)
		if werr := os.WriteFile(path+".bak", raw, 0o600); werr != nil {
			slog.Error("registry: backup failed", "file", path, "error", werr)
		}
		*dst = make(map[string]T)
	}
}

func (r *Registry) saveBotsLocked() error {
	// strip volatile fields before persisting
	out := make(map[string]Bot, len(r.bots))
	for id, b := range r.bots {
		c := *b
		c.Status = ""
		out[id] = c
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.dataDir, botsFile), data, 0o600)
}

func (r *Registry) saveAccountsLocked() error {
	data, err := json.MarshalIndent(r.accounts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.dataDir, accountsFile), data, 0o600)
}

// nextID issues a time-based identifier, strictly increasing even when two
// creations land in the same millisecond.
func (r *Registry) nextID() string {
	id := time.Now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}

// CreateBot allocates a record for owner. Non-admin owners are limited to
// UserBotQuota bots and get the restricted resource tier regardless of the
// requested values.
func (r *Registry) CreateBot(owner string, role Role, name, botType, ram, storage, env string) (Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if role != RoleAdmin {
		owned := 0
		for _, b := range r.bots {
			if b.Owner == owner {
				owned++
			}
		}
		if owned >= UserBotQuota {
			return Bot{}, ErrQuotaExceeded
		}
		ram = RestrictedRAM
		storage = RestrictedStorage
	}

	b := &Bot{
		ID:      r.nextID(),
		Owner:   owner,
		Name:    name,
		Type:    NormalizeType(botType),
		RAM:     ram,
		Storage: storage,
		Env:     env,
		Status:  StatusStopped,
	}
	r.bots[b.ID] = b
	if err := r.saveBotsLocked(); err != nil {
		delete(r.bots, b.ID)
		return Bot{}, err
	}
	return *b, nil
}

// GetBot returns a copy of the record.
func (r *Registry) GetBot(id string) (Bot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bots[id]
	if !ok {
		return Bot{}, false
	}
	return *b, true
}

// ListBots returns copies of all bots visible to the caller: admins see
// everything, users only their own.
func (r *Registry) ListBots(caller string, role Role) map[string]Bot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Bot)
	for id, b := range r.bots {
		if role != RoleAdmin && b.Owner != caller {
			continue
		}
		out[id] = *b
	}
	return out
}

// DeleteBot removes the record and persists. The caller is responsible for
// killing the process and destroying the workspace first.
func (r *Registry) DeleteBot(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bots[id]; !ok {
		return ErrNotFound
	}
	delete(r.bots, id)
	return r.saveBotsLocked()
}

// SetStatus flips the volatile run state. Missing records are ignored: the
// exit watcher may fire after deletion.
func (r *Registry) SetStatus(id string, st Status) {
	r.mu.Lock()
	if b, ok := r.bots[id]; ok {
		b.Status = st
	}
	r.mu.Unlock()
}

// BotName returns the display name for log snapshots, or "SYSTEM" when the
// record is gone.
func (r *Registry) BotName(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.bots[id]; ok {
		return b.Name
	}
	return "SYSTEM"
}

// BotIDs returns all known identifiers sorted ascending.
func (r *Registry) BotIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.bots))
	for id := range r.bots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the account for username.
func (r *Registry) Lookup(username string) (Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[username]
	return a, ok
}

// Accounts returns a copy of the account map.
func (r *Registry) Accounts() map[string]Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Account, len(r.accounts))
	for u, a := range r.accounts {
		out[u] = a
	}
	return out
}

// CreateAccount adds a login. Usernames are unique and case-sensitive.
func (r *Registry) CreateAccount(username, password string, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[username]; ok {
		return ErrUserExists
	}
	r.accounts[username] = Account{Password: password, Role: role}
	if err := r.saveAccountsLocked(); err != nil {
		delete(r.accounts, username)
		return err
	}
	return nil
}

// DeleteAccount removes a login. The bootstrap admin is undeletable by name
// comparison, regardless of caller.
func (r *Registry) DeleteAccount(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if username == r.bootAdmin {
		return ErrProtectedAccount
	}
	if _, ok := r.accounts[username]; !ok {
		return ErrNotFound
	}
	old := r.accounts[username]
	delete(r.accounts, username)
	if err := r.saveAccountsLocked(); err != nil {
		r.accounts[username] = old
		return err
	}
	return nil
}
