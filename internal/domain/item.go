package domain

// CodeDesc is Alma's code/description pair used for locations, provenance
// and similar controlled-vocabulary fields.
type CodeDesc struct {
	Value string `json:"value"`
	Desc  string `json:"desc"`
}

// BibData is the bibliographic portion of an Alma item record.
type BibData struct {
	MMSID  string `json:"mms_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// HoldingData locates the item within a holdings record.
type HoldingData struct {
	HoldingID      string   `json:"holding_id"`
	InTempLocation bool     `json:"in_temp_location"`
	TempLocation   CodeDesc `json:"temp_location"`
}

// ItemData is the physical-item portion of an Alma item record.
type ItemData struct {
	PID                   string   `json:"pid"`
	Barcode               string   `json:"barcode"`
	AlternativeCallNumber string   `json:"alternative_call_number"`
	InternalNote1         string   `json:"internal_note_1"`
	Location              CodeDesc `json:"location"`
	Provenance            CodeDesc `json:"provenance"`
}

// Item is the Alma catalog record carried by item-update webhooks.
// It is owned by Alma, not by this system; we only inspect and,
// for fixable issues, write it back.
type Item struct {
	BibData     BibData     `json:"bib_data"`
	HoldingData HoldingData `json:"holding_data"`
	ItemData    ItemData    `json:"item_data"`
}

// WebhookEvent is the inbound item-update payload posted by Alma.
type WebhookEvent struct {
	Item *Item `json:"item"`
}

func (e *WebhookEvent) Validate() error {
	if e.Item == nil || e.Item.ItemData.Barcode == "" {
		return ErrInvalidPayload
	}
	return nil
}
