package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/models/dtos"
)

// DecodeOffers turns any of the offer payload shapes the provider answers with
// into one list:
//
//	{"data": [offer, ...]}              GET /air/offers
//	{"data": {"offers": [...], ...}}    POST /air/offer_requests?return_offers=true
//	{"data": {<offer>}}                 GET /air/offers/{id}
//	[offer, ...]                        bare list (fixtures, cached payloads)
func DecodeOffers(raw []byte) ([]dtos.DuffelOffer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty offer payload")
	}

	if trimmed[0] == '[' {
		return decodeOfferList(trimmed)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode offer envelope: %w", err)
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []dtos.DuffelOffer{}, nil
	}

	switch data[0] {
	case '[':
		return decodeOfferList(data)
	case '{':
		var shape struct {
			Offers json.RawMessage `json:"offers"`
			Slices json.RawMessage `json:"slices"`
		}
		if err := json.Unmarshal(data, &shape); err != nil {
			return nil, fmt.Errorf("failed to decode offer data: %w", err)
		}
		if len(shape.Offers) > 0 && !bytes.Equal(shape.Offers, []byte("null")) {
			return decodeOfferList(shape.Offers)
		}
		if len(shape.Slices) > 0 {
			return []dtos.DuffelOffer{decodeOffer(data, 0)}, nil
		}
		return []dtos.DuffelOffer{}, nil
	default:
		return nil, fmt.Errorf("unexpected offer data starting with %q", data[0])
	}
}

// decodeOfferList decodes each element on its own. An element that does not
// fit DuffelOffer comes back flagged Malformed, with its id when readable.
func decodeOfferList(raw []byte) ([]dtos.DuffelOffer, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode offer list: %w", err)
	}

	offers := make([]dtos.DuffelOffer, 0, len(items))
	for i, item := range items {
		offers = append(offers, decodeOffer(item, i))
	}
	return offers, nil
}

func decodeOffer(raw json.RawMessage, index int) dtos.DuffelOffer {
	var offer dtos.DuffelOffer
	if err := json.Unmarshal(raw, &offer); err != nil {
		var ref struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &ref)
		logging.Warn("Skipping malformed offer", "index", index, "id", ref.ID, "error", err)
		return dtos.DuffelOffer{ID: ref.ID, Malformed: true}
	}
	return offer
}
