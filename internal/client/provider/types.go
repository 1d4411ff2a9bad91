package provider

import "time"

// Wire types for the upstream flow provider. Premium and price fields arrive
// as strings and are parsed at the ingest boundary.

type OHLCTick struct {
	StartTime   time.Time `json:"start_time"`
	Open        string    `json:"open"`
	High        string    `json:"high"`
	Low         string    `json:"low"`
	Close       string    `json:"close"`
	Volume      int64     `json:"volume"`
	TotalVolume int64     `json:"total_volume"`
}

type SpotExposureTick struct {
	Time                   time.Time `json:"time"`
	Price                  string    `json:"price"`
	CharmPerOnePercentMove float64   `json:"charm_per_one_percent_move"`
	GammaPerOnePercentMove float64   `json:"gamma_per_one_percent_move"`
	VannaPerOnePercentMove float64   `json:"vanna_per_one_percent_move"`
}

type NetPremTick struct {
	TapeTime       time.Time `json:"tape_time"`
	NetCallPremium string    `json:"net_call_premium"`
	NetPutPremium  string    `json:"net_put_premium"`
	CallVolume     int64     `json:"call_volume"`
	PutVolume      int64     `json:"put_volume"`
}

type OptionsVolumeTick struct {
	Time          time.Time `json:"time"`
	CallBidVolume int64     `json:"call_volume_bid_side"`
	CallAskVolume int64     `json:"call_volume_ask_side"`
	PutBidVolume  int64     `json:"put_volume_bid_side"`
	PutAskVolume  int64     `json:"put_volume_ask_side"`
}

type DarkPoolTrade struct {
	ExecutedAt time.Time `json:"executed_at"`
	Price      string    `json:"price"`
	Premium    string    `json:"premium"`
	Size       int64     `json:"size"`
	Volume     int64     `json:"volume"`
}
