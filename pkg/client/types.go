package client

// Identity is the authenticated caller returned by Login.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Bot mirrors the panel's bot record.
type Bot struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	RAM     string `json:"ram"`
	Storage string `json:"storage"`
	Env     string `json:"env,omitempty"`
	Status  string `json:"status,omitempty"`
}

// CreateBotRequest provisions a new bot.
type CreateBotRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	RAM     string `json:"ram,omitempty"`
	Storage string `json:"storage,omitempty"`
	Env     string `json:"env,omitempty"`
}

// LogEntry is one line of the shared console buffer.
type LogEntry struct {
	ID        int64  `json:"id"`
	BotID     string `json:"serverId"`
	BotName   string `json:"serverName"`
	Channel   string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Account is a panel login as listed by the users endpoint.
type Account struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUserRequest adds a panel login.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// ErrorResponse represents an API error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
