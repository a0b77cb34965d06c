package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"maitred/internal/models"
)

// recordFields is the fixed number of comma-separated fields per ledger line:
// owner, table number, capacity, party size, special, time slot, booked,
// card number, surcharge.
const recordFields = 9

// ErrMalformedRecord reports a ledger line that cannot be parsed. The store
// aborts the whole load on the first such line; there is no partial recovery.
var ErrMalformedRecord = errors.New("malformed ledger record")

// EncodeRecord renders one record as its persisted line.
func EncodeRecord(r models.TableRecord) string {
	party := models.Sentinel
	if r.Booked {
		party = strconv.Itoa(r.PartySize)
	}
	return strings.Join([]string{
		r.Owner,
		strconv.Itoa(r.TableNumber),
		strconv.Itoa(r.Capacity),
		party,
		encodeBool(r.Special),
		strconv.Itoa(r.TimeSlot),
		encodeBool(r.Booked),
		r.CardNumber,
		strconv.Itoa(r.Surcharge),
	}, ",")
}

// DecodeRecord parses one persisted line back into a record.
func DecodeRecord(line string) (models.TableRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != recordFields {
		return models.TableRecord{}, fmt.Errorf("%w: expected %d fields, got %d in %q",
			ErrMalformedRecord, recordFields, len(fields), line)
	}

	tableNumber, err := decodeInt(fields[1], "table number")
	if err != nil {
		return models.TableRecord{}, err
	}
	capacity, err := decodeInt(fields[2], "capacity")
	if err != nil {
		return models.TableRecord{}, err
	}
	partySize := 0
	if fields[3] != models.Sentinel {
		partySize, err = decodeInt(fields[3], "party size")
		if err != nil {
			return models.TableRecord{}, err
		}
	}
	timeSlot, err := decodeInt(fields[5], "time slot")
	if err != nil {
		return models.TableRecord{}, err
	}
	surcharge, err := decodeInt(fields[8], "surcharge")
	if err != nil {
		return models.TableRecord{}, err
	}

	return models.TableRecord{
		Owner:       fields[0],
		TableNumber: tableNumber,
		Capacity:    capacity,
		PartySize:   partySize,
		Special:     fields[4] == "Yes",
		TimeSlot:    timeSlot,
		Booked:      fields[6] == "Yes",
		CardNumber:  fields[7],
		Surcharge:   surcharge,
	}, nil
}

func decodeInt(field, name string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric %s %q", ErrMalformedRecord, name, field)
	}
	return n, nil
}

func encodeBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
