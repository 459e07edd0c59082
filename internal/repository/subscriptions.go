package repository

import (
	"database/sql"
	"fmt"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// CreateBotToken stores a new chat-bot credential
func (r *Repository) CreateBotToken(t *models.BotToken) error {
	query := `
		INSERT INTO backoffice.bot_tokens (owner_id, name, platform, token)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, t.OwnerID, t.Name, t.Platform, t.Token).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bot token: %w", err)
	}
	return nil
}

// CreateChat stores a new destination chat
func (r *Repository) CreateChat(c *models.Chat) error {
	query := `
		INSERT INTO backoffice.chats (owner_id, name, platform, chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, c.OwnerID, c.Name, c.Platform, c.ChatID).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// CreateSubscription binds an owner to a bot token and a chat. The token and
// chat must belong to the same owner and share a platform.
func (r *Repository) CreateSubscription(s *models.Subscription) error {
	var tokenOwner, chatOwner int64
	var tokenPlatform, chatPlatform string

	err := r.db.QueryRow(`
		SELECT owner_id, platform FROM backoffice.bot_tokens WHERE id = $1`, s.TokenID).
		Scan(&tokenOwner, &tokenPlatform)
	if err == sql.ErrNoRows {
		return models.Invalid("token %d não encontrado", s.TokenID)
	}
	if err != nil {
		return fmt.Errorf("failed to check bot token: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT owner_id, platform FROM backoffice.chats WHERE id = $1`, s.ChatRefID).
		Scan(&chatOwner, &chatPlatform)
	if err == sql.ErrNoRows {
		return models.Invalid("chat %d não encontrado", s.ChatRefID)
	}
	if err != nil {
		return fmt.Errorf("failed to check chat: %w", err)
	}

	if tokenOwner != s.OwnerID || chatOwner != s.OwnerID {
		return models.Invalid("token e chat devem pertencer ao dono da notificação")
	}
	if tokenPlatform != chatPlatform {
		return models.Invalid("token e chat devem ser da mesma plataforma")
	}

	query := `
		INSERT INTO backoffice.subscriptions (owner_id, token_id, chat_ref_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err = r.db.QueryRow(query, s.OwnerID, s.TokenID, s.ChatRefID).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a subscription
func (r *Repository) DeleteSubscription(id int64) error {
	res, err := r.db.Exec(`DELETE FROM backoffice.subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("notificação %d não encontrada", id)
	}
	return nil
}

// SubscriptionDetail is a subscription joined with its credential and chat.
type SubscriptionDetail struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	Platform string `json:"platform"`
	Token    string `json:"-"`
	ChatID   string `json:"chat_id"`
	BotName  string `json:"bot_name"`
	ChatName string `json:"chat_name"`
}

// ListSubscriptionsByOwner returns an owner's subscriptions with the joined
// bot credential and destination chat.
func (r *Repository) ListSubscriptionsByOwner(ownerID int64) ([]*SubscriptionDetail, error) {
	query := `
		SELECT s.id, s.owner_id, t.platform, t.token, c.chat_id, t.name, c.name
		FROM backoffice.subscriptions s
		JOIN backoffice.bot_tokens t ON t.id = s.token_id
		JOIN backoffice.chats c ON c.id = s.chat_ref_id
		WHERE s.owner_id = $1
		ORDER BY s.id`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*SubscriptionDetail
	for rows.Next() {
		s := &SubscriptionDetail{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Platform, &s.Token, &s.ChatID,
			&s.BotName, &s.ChatName); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
