package game

import (
	"errors"

	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// Rule violations. Callers classify failures with errors.Is; detail is added
// by wrapping.
var (
	ErrGameNotFound          = errors.New("game not found")
	ErrInvalidAction         = rules.ErrInvalidAction
	ErrNotPlayersTurn        = errors.New("not player's turn")
	ErrInvalidPlacement      = errors.New("invalid placement")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrBankExhausted         = errors.New("bank cannot cover request")
	ErrTradeOfferNotFound    = errors.New("no trade offer")
	ErrTradeOfferPending     = errors.New("trade offer already pending")
	ErrTradeEmbargoed        = errors.New("trade embargoed")
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrCardNotPlayable       = errors.New("growth card not playable")
	ErrInvalidTarget         = errors.New("invalid target")
	ErrInvalidDiscard        = errors.New("invalid discard")
	ErrInvalidPlayer         = errors.New("unknown player")
	ErrInvalidPlayerCount    = errors.New("invalid player count")
	ErrGameOver              = errors.New("game is over")
	ErrChecksumMismatch      = errors.New("snapshot checksum mismatch")
)
