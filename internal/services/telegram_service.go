package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"
)

// TelegramService handles sending admin notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// SignupNotification describes a newly created account.
type SignupNotification struct {
	UserID string
	Name   string
	Email  string
	Method string
}

// FormatSignup renders the admin message for a new account.
func FormatSignup(n SignupNotification) string {
	var b strings.Builder
	b.WriteString("🆕 <b>Nuevo usuario</b>\n\n")
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(n.Name))
	fmt.Fprintf(&b, "✉️ %s\n", html.EscapeString(n.Email))
	fmt.Fprintf(&b, "🔑 %s\n", n.Method)
	fmt.Fprintf(&b, "🆔 <code>%s</code>", n.UserID)
	return b.String()
}

// NotifySignup tells the admin chat about a new account. Errors are only logged.
func (s *TelegramService) NotifySignup(n SignupNotification) {
	if err := s.SendToAdmin(FormatSignup(n)); err != nil {
		log.Printf("[Telegram] Signup notification failed for %s: %v", n.Email, err)
	}
}
