package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const slackFooter = "Registration portal - Backend"

// SlackService gère l'envoi des alertes d'exploitation sur Slack
type SlackService struct {
	webhookURL string
	client     *http.Client
}

// SlackMessage représente un message Slack
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment représente une pièce jointe Slack
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field représente un champ dans une pièce jointe Slack
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackService crée une nouvelle instance de SlackService
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		log.Println("⚠️  Slack webhook URL non configuré - alertes Slack désactivées")
	}
	return &SlackService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled indique si un webhook est configuré
func (s *SlackService) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

// Send poste une pièce jointe sur le webhook
func (s *SlackService) Send(ctx context.Context, attachment Attachment) error {
	if !s.Enabled() {
		return nil
	}
	if attachment.Timestamp == 0 {
		attachment.Timestamp = time.Now().Unix()
	}
	if attachment.Footer == "" {
		attachment.Footer = slackFooter
	}

	jsonData, err := json.Marshal(SlackMessage{Attachments: []Attachment{attachment}})
	if err != nil {
		return fmt.Errorf("erreur lors de la sérialisation du message Slack: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erreur lors de l'envoi à Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack a retourné un code d'erreur: %d", resp.StatusCode)
	}
	return nil
}

// SendErrorNotification envoie une alerte d'erreur HTTP
func (s *SlackService) SendErrorNotification(errorType, method, path, statusCode, message, origin, userAgent string) error {
	color := "danger"
	if statusCode == "403" {
		color = "warning"
	}

	fields := []Field{
		{Title: "Méthode", Value: method, Short: true},
		{Title: "Status Code", Value: statusCode, Short: true},
		{Title: "Chemin", Value: path, Short: false},
	}
	if origin != "" {
		fields = append(fields, Field{Title: "Origin", Value: origin, Short: true})
	}
	if userAgent != "" {
		fields = append(fields, Field{Title: "User-Agent", Value: userAgent, Short: false})
	}

	err := s.Send(context.Background(), Attachment{
		Color:  color,
		Title:  fmt.Sprintf("🚨 Erreur serveur: %s", errorType),
		Text:   message,
		Fields: fields,
	})
	if err == nil && s.Enabled() {
		log.Printf("✓ Alerte Slack envoyée pour l'erreur: %s %s", method, path)
	}
	return err
}

// SendCriticalError envoie une alerte pour une erreur critique
func (s *SlackService) SendCriticalError(method, path, statusCode, errorMessage, origin, userAgent string) {
	if err := s.SendErrorNotification("Erreur Critique", method, path, statusCode, errorMessage, origin, userAgent); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de l'alerte Slack: %v", err)
	}
}

// SendCORSError envoie une alerte pour une erreur CORS
func (s *SlackService) SendCORSError(method, path, origin, userAgent string) {
	message := fmt.Sprintf("Origine non autorisée: %s", origin)
	if err := s.SendErrorNotification("Erreur CORS", method, path, "403", message, origin, userAgent); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de l'alerte Slack: %v", err)
	}
}
