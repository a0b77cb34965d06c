package models

// Sentinel value written for an absent owner, party size or card number.
const Sentinel = "N/A"

// Outcome strings returned by the reservation service. These are the wire
// protocol, not internal error codes; do not reword them.
const (
	OutcomeInvalidDay            = "Invalid Day"
	OutcomeInvalidTime           = "Invalid Time"
	OutcomeUserAlreadyHasBooking = "User Already Has Reservation For This Day"
	OutcomeTableAlreadyBooked    = "Table Already Booked"
	OutcomePartyTooBig           = "Party Too Big"
	OutcomePartyCantBookSpecial  = "Party Can't Book Special"
	OutcomeInvalidCreditCard     = "Invalid Credit Card Number"
	OutcomeReservationMade       = "Reservation Made"
	OutcomeReservationFailed     = "Reservation Failed"
	OutcomeCancellationMade      = "Cancellation Made"
	OutcomeCancellationFailed    = "Cancellation Failed"
	OutcomeChangeSuccessful      = "Change Successful"
	OutcomeChangeFailed          = "Change Failed"
)

// Command lines recognized by the dispatcher.
const (
	CmdLogin       = "Logging in"
	CmdDeleteAcct  = "Deleting account"
	CmdMakeAcct    = "Making account"
	CmdCancel      = "Canceling Reservation"
	CmdListTables  = "Getting All Available Tables"
	CmdReserve     = "Making Reservation"
	CmdCloseLate   = "Close Late"
	ReplySuccess   = "Success"
	ReplyFailed    = "Failed"
	ReplyFailure   = "Failure"
	ReplyAdminHand = "Admin HandOff"
)

// DefaultAdminUser is the reserved privileged identity unless overridden in
// config.
const DefaultAdminUser = "Admin"

const (
	// SpecialTableNumber is the one table per slot that requires a card and
	// carries a surcharge.
	SpecialTableNumber = 8
	// SpecialSurcharge is added when a special table is booked.
	SpecialSurcharge = 100
	// CardDigits is the required credit card number length.
	CardDigits = 16
	// LateSlot is the extra hour appended when the restaurant closes later.
	LateSlot = 21
)

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Weekdays returns the seven canonical lowercase day names in week order.
func Weekdays() []string {
	out := make([]string, len(weekdays))
	copy(out, weekdays)
	return out
}

// DefaultSlots are the seeded reservation hours. The late slot 21 is only
// present after an admin extends closing time.
func DefaultSlots() []int {
	return []int{11, 12, 13, 14, 17, 18, 19, 20}
}

// ValidTime reports whether t is a bookable hour, including the late slot.
func ValidTime(t int) bool {
	return (t >= 11 && t <= 14) || (t >= 17 && t <= 21)
}
