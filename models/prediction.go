package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LooseString accepts a JSON string or number and keeps its textual form.
// The predictor serves ranks both ways.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	*s = LooseString(strings.TrimSpace(string(data)))
	return nil
}

// RawPredictedOption is a predictor row exactly as received
type RawPredictedOption struct {
	Institute   LooseString `json:"institute"`
	Branch      LooseString `json:"branch"`
	Quota       LooseString `json:"quota"`
	SeatType    LooseString `json:"seatType"`
	Gender      LooseString `json:"gender"`
	OpeningRank LooseString `json:"openingRank"`
	ClosingRank LooseString `json:"closingRank"`
	Probability LooseString `json:"probability"`
}

// PredictedOption is a predictor row with ranks parsed once at the boundary
type PredictedOption struct {
	Institute        string `json:"institute"`
	Branch           string `json:"branch"`
	Quota            string `json:"quota"`
	SeatType         string `json:"seat_type"`
	Gender           string `json:"gender"`
	OpeningRank      string `json:"opening_rank"`
	ClosingRank      string `json:"closing_rank"`
	Probability      string `json:"probability"`
	OpeningRankValue int    `json:"opening_rank_value"`
	ClosingRankValue int    `json:"closing_rank_value"`
}

// PredictionRequest is the predictor form input
type PredictionRequest struct {
	Exam       string   `json:"exam,omitempty"`
	Percentile *float64 `json:"percentile,omitempty"`
	Rank       *int     `json:"rank,omitempty"`
	Category   string   `json:"category"`
	Gender     string   `json:"gender"`
	HomeState  string   `json:"homeState"`
}

// RawPredictionResponse is the predictor response as received
type RawPredictionResponse struct {
	Predictions          []RawPredictedOption `json:"predictions"`
	HomeStatePredictions []RawPredictedOption `json:"homeStatePredictions"`
	CalculatedRank       float64              `json:"calculatedRank"`
}

// PredictionResponse is the predictor response after boundary parsing
type PredictionResponse struct {
	Predictions          []PredictedOption `json:"predictions"`
	HomeStatePredictions []PredictedOption `json:"home_state_predictions"`
	CalculatedRank       float64           `json:"calculated_rank"`
}

// GenderMode selects which rows the gender filter keeps
type GenderMode string

const (
	GenderModeAll           GenderMode = "All"
	GenderModeFemaleOnly    GenderMode = "Female-only"
	GenderModeGenderNeutral GenderMode = "Gender-Neutral"
)

// TierView is the derived presentation of one filtered prediction list
type TierView struct {
	Tiers      []TabCount        `json:"tiers"`
	ActiveTier Tab               `json:"active_tier,omitempty"`
	Rows       []PredictedOption `json:"rows"`
	Extra      []PredictedOption `json:"extra"`
	Empty      bool              `json:"empty"`
}

// PredictionView is the derived view model for the predictor page
type PredictionView struct {
	All                 TierView   `json:"all"`
	HomeState           TierView   `json:"home_state"`
	CalculatedRank      float64    `json:"calculated_rank"`
	GenderFilter        GenderMode `json:"gender_filter"`
	GenderFilterVisible bool       `json:"gender_filter_visible"`
	Locked              bool       `json:"locked"`
}
