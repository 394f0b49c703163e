package room

// Room errors are string sentinels so transport code can map them to status
// codes with errors.Is and tests can assert on identity. Engine errors
// (engine.ErrIllegalMove, engine.ErrBadNotation) pass through Move unchanged.
var (
	ErrRoomNotFound  = errf("room not found")
	ErrRoomClosed    = errf("room is closed")
	ErrRoomNameTaken = errf("room name already in use")

	ErrRoomFull           = errf("room already has two occupants")
	ErrSpectatingDisabled = errf("room does not allow spectators")
	ErrInvalidRole        = errf("role must be player or spectator")
	ErrAIDisabled         = errf("room does not allow an AI opponent")

	ErrNotAPlayer  = errf("user is not a player in this room")
	ErrNotOccupant = errf("user is not in this room")
	ErrNotYourTurn = errf("not your turn")
	ErrNotHost     = errf("only the host may do this")

	ErrNotEnoughPlayers = errf("need two occupants and at least one human")
	ErrAlreadyStarted   = errf("game already started")
	ErrNotStarted       = errf("game has not started")
	ErrGameFinished     = errf("game is already finished")
	ErrGameNotFinished  = errf("game is not finished")

	ErrOfferNotFound = errf("no such pending offer")
	ErrOwnOffer      = errf("cannot accept your own offer")

	ErrClockExpired = errf("time forfeit")

	ErrValidation = errf("invalid arguments")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }

func errf(s string) error { return staticErr(s) }
