package domain

type RankedEntry struct {
	AttendantID uint `json:"attendant_id"`
	TotalXP     int  `json:"total_xp"`
	Position    int  `json:"position"`
}
