package main

type CowinSlots struct {
	Centers []Centers `json:"centers"`
}

type Sessions struct {
	Date              string     `json:"date"`
	AvailableCapacity NullNumber `json:"available_capacity"`
	MinAgeLimit       NullNumber `json:"min_age_limit"`
	Vaccine           string     `json:"vaccine"`
}

type Centers struct {
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	BlockName string     `json:"block_name"`
	FeeType   string     `json:"fee_type"`
	Sessions  []Sessions `json:"sessions"`
}

func (c *Centers) record(s Sessions) Record {
	return Record{
		Name:              c.Name,
		Address:           c.Address,
		BlockName:         c.BlockName,
		FeeType:           c.FeeType,
		Date:              s.Date,
		AvailableCapacity: s.AvailableCapacity,
		MinAgeLimit:       s.MinAgeLimit,
		Vaccine:           s.Vaccine,
	}
}
