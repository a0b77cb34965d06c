package models

// TableRecord is one table-and-time-slot's booking state, persisted as a
// single comma-separated line in a day ledger.
type TableRecord struct {
	Owner       string `json:"owner"`
	TableNumber int    `json:"table_number"`
	Capacity    int    `json:"capacity"`
	PartySize   int    `json:"party_size"`
	Special     bool   `json:"special"`
	TimeSlot    int    `json:"time_slot"`
	Booked      bool   `json:"booked"`
	CardNumber  string `json:"card_number"`
	Surcharge   int    `json:"surcharge"`
}

// NewOpenTable returns an unbooked record for the given slot. Table 8 is the
// special table regardless of capacity argument conventions elsewhere.
func NewOpenTable(tableNumber, capacity, timeSlot int) TableRecord {
	return TableRecord{
		Owner:       Sentinel,
		TableNumber: tableNumber,
		Capacity:    capacity,
		Special:     tableNumber == SpecialTableNumber,
		TimeSlot:    timeSlot,
		CardNumber:  Sentinel,
	}
}

// Book marks the record as reserved by owner.
func (r *TableRecord) Book(owner string, partySize int) {
	r.Owner = owner
	r.PartySize = partySize
	r.Booked = true
}

// Release resets the record to its unbooked state. The card and surcharge are
// always cleared; on non-special tables they are already at their zero values.
func (r *TableRecord) Release() {
	r.Owner = Sentinel
	r.PartySize = 0
	r.Booked = false
	r.CardNumber = Sentinel
	r.Surcharge = 0
}
