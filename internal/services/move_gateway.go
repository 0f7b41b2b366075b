package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"binfleet-backend/internal/database"
	"binfleet-backend/internal/helpers"
	"binfleet-backend/internal/middleware"
	"binfleet-backend/internal/models"
	"binfleet-backend/internal/moves"
	"binfleet-backend/internal/websocket"
)

// Notifier pushes live events to connected users
type Notifier interface {
	Notify(userID, eventType string, data interface{})
}

// MoveStore is the persistence the gateway writes through
type MoveStore interface {
	Insert(ctx context.Context, req models.CreateBinMoveRequest, requestedBy string) (*models.BinMoveRequest, error)
	GetMoveRequest(ctx context.Context, id string) (*models.BinMoveRequest, error)
	AssignToUser(ctx context.Context, moveID, userID string) (*models.User, error)
	InsertIntoShift(ctx context.Context, moveID, shiftID string, insertAfterBinID, insertPosition *string) (*database.ShiftAssignment, error)
}

// UserStore resolves actors and push tokens
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	LatestFCMToken(ctx context.Context, userID string) (*models.FCMToken, error)
}

// BinLookup fetches a bin for notification text
type BinLookup interface {
	GetBin(ctx context.Context, id string) (*models.Bin, error)
}

// MoveGateway implements moves.Gateway on top of the database. Each call writes
// its history entry and then notifies whoever got the work.
type MoveGateway struct {
	db       sqlx.ExtContext
	moves    MoveStore
	users    UserStore
	bins     BinLookup
	notifier Notifier
	fcm      *FCMService
	log      zerolog.Logger
}

var _ moves.Gateway = (*MoveGateway)(nil)

// NewMoveGateway wires the gateway. fcm may be nil when push is not configured.
func NewMoveGateway(db sqlx.ExtContext, moveStore MoveStore, users UserStore, bins BinLookup, notifier Notifier, fcm *FCMService, log zerolog.Logger) *MoveGateway {
	return &MoveGateway{
		db:       db,
		moves:    moveStore,
		users:    users,
		bins:     bins,
		notifier: notifier,
		fcm:      fcm,
		log:      log.With().Str("component", "move_gateway").Logger(),
	}
}

func (g *MoveGateway) CreateMoveRecord(ctx context.Context, req models.CreateBinMoveRequest) (string, error) {
	actor := g.actor(ctx)

	move, err := g.moves.Insert(ctx, req, actor.ID)
	if err != nil {
		return "", asValidation(err)
	}

	// history is best effort; the move exists either way
	_ = helpers.LogMoveRequestCreated(ctx, g.db, move.ID, actor, move.Notes)
	return move.ID, nil
}

func (g *MoveGateway) AssignToUser(ctx context.Context, moveID, userID string) error {
	actor := g.actor(ctx)

	user, err := g.moves.AssignToUser(ctx, moveID, userID)
	if err != nil {
		return asValidation(err)
	}

	_ = helpers.LogMoveRequestAssigned(ctx, g.db, moveID, actor, models.AssignmentTypeManual, &user.ID, &user.Name, nil)

	notice, ok := g.notice(ctx, moveID)
	if !ok {
		return nil
	}
	g.notifier.Notify(user.ID, websocket.EventMoveAssigned, notice)
	g.push(ctx, user.ID, notice)
	return nil
}

func (g *MoveGateway) AssignToShift(ctx context.Context, moveID, shiftID string, insertAfterBinID, insertPosition *string) error {
	actor := g.actor(ctx)

	placed, err := g.moves.InsertIntoShift(ctx, moveID, shiftID, insertAfterBinID, insertPosition)
	if err != nil {
		return asValidation(err)
	}

	driverID := placed.Shift.DriverID
	_ = helpers.LogMoveRequestAssigned(ctx, g.db, moveID, actor, models.AssignmentTypeShift, &driverID, &placed.DriverName, &placed.Shift.ID)

	notice, ok := g.notice(ctx, moveID)
	if !ok {
		return nil
	}
	notice.ShiftID = placed.Shift.ID
	notice.Sequence = placed.SequenceOrder

	event := websocket.EventMoveAssigned
	if placed.Shift.IsInProgress() {
		event = websocket.EventUrgentMoveInserted
	}
	g.notifier.Notify(driverID, event, notice)
	g.push(ctx, driverID, notice)
	return nil
}

// actor is the user running the batch. Requests reach here through the auth
// middleware, so missing claims only happen in background or test callers.
func (g *MoveGateway) actor(ctx context.Context) helpers.Actor {
	claims, ok := middleware.UserFromContext(ctx)
	if !ok {
		return helpers.Actor{ID: "system", Name: "System", Role: "system"}
	}
	actor := helpers.Actor{ID: claims.UserID, Name: claims.Email, Role: claims.Role}
	if user, err := g.users.GetByID(ctx, claims.UserID); err == nil {
		actor.Name = user.Name
	}
	return actor
}

func (g *MoveGateway) notice(ctx context.Context, moveID string) (MoveNotice, bool) {
	move, err := g.moves.GetMoveRequest(ctx, moveID)
	if err != nil {
		g.log.Warn().Err(err).Str("move_id", moveID).Msg("⚠️ Skipping notification, move not readable")
		return MoveNotice{}, false
	}
	notice := MoveNotice{
		MoveID:   move.ID,
		BinID:    move.BinID,
		Address:  move.OriginalAddress,
		MoveType: move.MoveType,
		Urgency:  move.Urgency,
	}
	if bin, err := g.bins.GetBin(ctx, move.BinID); err == nil {
		notice.BinNumber = bin.BinNumber
	}
	return notice, true
}

func (g *MoveGateway) push(ctx context.Context, userID string, notice MoveNotice) {
	if g.fcm == nil {
		return
	}
	token, err := g.users.LatestFCMToken(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			g.log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Failed to load FCM token")
		}
		return
	}
	if err := g.fcm.SendMoveAssignedNotification(ctx, token.Token, notice); err != nil {
		g.log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Failed to send FCM notification")
	}
}

// asValidation marks rejections the database made on business rules as
// validation errors so the batch does not report them as transport failures
func asValidation(err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrBinHasNoLocation),
		errors.Is(err, database.ErrInvalidState):
		return fmt.Errorf("%w: %w", moves.ErrValidation, err)
	default:
		return err
	}
}
