package strategy

// decision is a basic-strategy table cell. Cells where the preferred
// action may be unavailable (double after three cards, surrender after
// the first decision) encode their fallback.
type decision byte

const (
	hit           decision = 'H'
	stand         decision = 'S'
	doubleOrHit   decision = 'D'
	doubleOrStand decision = 'd'
	splitPair     decision = 'P'
	surrenderHit  decision = 'R'
)

// Tables are rows of ten cells, one per dealer upcard value 2 through
// ace. Multi-deck, dealer stands on soft 17, double after split.
//
// Columns:            2    3    4    5    6    7    8    9    T    A

var hardTable = map[int]string{
	4:  "HHHHHHHHHH",
	5:  "HHHHHHHHHH",
	6:  "HHHHHHHHHH",
	7:  "HHHHHHHHHH",
	8:  "HHHHHHHHHH",
	9:  "HDDDDHHHHH",
	10: "DDDDDDDDHH",
	11: "DDDDDDDDDH",
	12: "HHSSSHHHHH",
	13: "SSSSSHHHHH",
	14: "SSSSSHHHHH",
	15: "SSSSSHHHRH",
	16: "SSSSSHHRRR",
	17: "SSSSSSSSSS",
	18: "SSSSSSSSSS",
	19: "SSSSSSSSSS",
	20: "SSSSSSSSSS",
	21: "SSSSSSSSSS",
}

// softTable is keyed by the soft total (A-2 is soft 13).
var softTable = map[int]string{
	13: "HHHDDHHHHH",
	14: "HHHDDHHHHH",
	15: "HHDDDHHHHH",
	16: "HHDDDHHHHH",
	17: "HDDDDHHHHH",
	18: "SddddSSHHH",
	19: "SSSSSSSSSS",
	20: "SSSSSSSSSS",
	21: "SSSSSSSSSS",
}

// pairTable is keyed by the value of the paired card; aces key on 11.
// A 5-5 plays as hard 10 and a T-T as 20, never splitting.
var pairTable = map[int]string{
	2:  "PPPPPPHHHH",
	3:  "PPPPPPHHHH",
	4:  "HHHPPHHHHH",
	5:  "DDDDDDDDHH",
	6:  "PPPPPHHHHH",
	7:  "PPPPPPHHHH",
	8:  "PPPPPPPPPP",
	9:  "PPPPPSPPSS",
	10: "SSSSSSSSSS",
	11: "PPPPPPPPPP",
}

// lookup returns the table cell for a player total against a dealer
// upcard value (2-11). False when the total is off the table.
func lookup(table map[int]string, total, upValue int) (decision, bool) {
	row, ok := table[total]
	if !ok || upValue < 2 || upValue > 11 {
		return 0, false
	}
	return decision(row[upValue-2]), true
}
