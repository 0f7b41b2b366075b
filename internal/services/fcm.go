package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// MoveNotice is the push payload for a move handed to a driver.
// Sequence is the stop number when the move joined a shift route, else 0.
type MoveNotice struct {
	MoveID    string
	BinID     string
	BinNumber int
	Address   string
	MoveType  string
	Urgency   string
	ShiftID   string
	Sequence  int
}

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(credentialsFile string) (*FCMService, error) {
	ctx := context.Background()

	// Initialize Firebase app
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	// Get messaging client
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials
// This is useful for cloud deployments (Railway, Fly.io, Render) where you can't upload files easily
func NewFCMServiceFromBase64(credentialsBase64 string) (*FCMService, error) {
	ctx := context.Background()

	// Decode base64 credentials
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}

	// Initialize Firebase app with JSON credentials
	opt := option.WithCredentialsJSON(credentialsJSON)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	// Get messaging client
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// SendMoveAssignedNotification tells a driver a bin move was added to their work
func (s *FCMService) SendMoveAssignedNotification(ctx context.Context, token string, move MoveNotice) error {
	title := "New Bin Move"
	if move.Urgency == "urgent" {
		title = "Urgent Bin Move"
	}

	body := fmt.Sprintf("Bin #%d at %s needs to be moved.", move.BinNumber, move.Address)
	if move.Sequence > 0 {
		body = fmt.Sprintf("Bin #%d at %s was added to your route as stop %d.", move.BinNumber, move.Address, move.Sequence)
	}

	data := map[string]string{
		"type":       "move_assigned",
		"move_id":    move.MoveID,
		"bin_id":     move.BinID,
		"bin_number": strconv.Itoa(move.BinNumber),
		"move_type":  move.MoveType,
		"urgency":    move.Urgency,
	}
	if move.ShiftID != "" {
		data["shift_id"] = move.ShiftID
	}

	response, err := s.client.Send(ctx, message(token, title, body, data))
	if err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}

	log.Info().Str("response", response).Str("move_id", move.MoveID).Msg("✅ FCM notification sent successfully")
	return nil
}

func message(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}
