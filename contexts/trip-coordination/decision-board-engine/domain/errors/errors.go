package errors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid decision board input")
	ErrBoardNotFound   = errors.New("decision board not found")
	ErrOptionNotFound  = errors.New("itinerary option not found")
	ErrBoardExists     = errors.New("trip already has an active decision board")
	ErrDuplicateVote   = errors.New("voter already voted on this option")
	ErrNotEligible     = errors.New("voter is not a member of the trip")
	ErrNotOrganizer    = errors.New("caller is not the trip organizer")
	ErrBoardNotOpen    = errors.New("decision board is not open for voting")
	ErrVotingClosed    = errors.New("voting is closed on this board")
	ErrVersionConflict = errors.New("decision board version conflict")
	ErrBusy            = errors.New("decision board is busy, retry later")
)
