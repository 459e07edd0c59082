package models

import "time"

// Messaging platforms supported by the notification dispatcher.
const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

// BotToken stores a chat-bot credential owned by a staff user.
type BotToken struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	Token     string    `json:"-"` // Not serialized
	CreatedAt time.Time `json:"created_at"`
}

// Chat stores a destination chat identifier on a messaging platform.
type Chat struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	ChatID    string    `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription binds an owning user to a bot credential and a destination
// chat. Read-only from the dispatcher's perspective.
type Subscription struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	TokenID   int64     `json:"token_id"`
	ChatRefID int64     `json:"chat_ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks a bot token's field invariants.
func (t *BotToken) Validate() error {
	if t.OwnerID == 0 {
		return Invalid("dono é obrigatório")
	}
	if t.Token == "" {
		return Invalid("token do bot é obrigatório")
	}
	if t.Platform != PlatformTelegram && t.Platform != PlatformDiscord {
		return Invalid("plataforma desconhecida: %s", t.Platform)
	}
	return nil
}

// Validate checks a chat destination's field invariants.
func (c *Chat) Validate() error {
	if c.OwnerID == 0 {
		return Invalid("dono é obrigatório")
	}
	if c.ChatID == "" {
		return Invalid("chat_id é obrigatório")
	}
	if c.Platform != PlatformTelegram && c.Platform != PlatformDiscord {
		return Invalid("plataforma desconhecida: %s", c.Platform)
	}
	return nil
}
