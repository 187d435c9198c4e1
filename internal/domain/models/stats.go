package models

// CleanStats counts the outcome of every row seen while cleaning one shard file.
// A row lands in exactly one rejection bucket or in Accepted; SignCorrected is
// counted in addition to the final outcome.
type CleanStats struct {
	Rows          int `json:"rows"`
	Accepted      int `json:"accepted"`
	EmptyField    int `json:"empty_field"`
	Malformed     int `json:"malformed"`
	Duplicate     int `json:"duplicate"`
	SignCorrected int `json:"sign_corrected"`
	Magnitude     int `json:"magnitude"`
	NegativeSize  int `json:"negative_size"`
}

// Rejected returns the number of rows dropped for any reason.
func (s CleanStats) Rejected() int {
	return s.EmptyField + s.Malformed + s.Duplicate + s.Magnitude + s.NegativeSize
}
