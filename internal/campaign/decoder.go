package campaign

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/mr-tron/base58"
)

// ProgramDataPrefix marks log lines carrying base64-encoded event payloads.
const ProgramDataPrefix = "Program data: "

// discriminatorLen is the width of the kind tag prefixing every payload.
// The tag is skipped, not matched: candidate layouts are tried in order instead.
const discriminatorLen = 8

// payloadParser attempts to interpret a payload (discriminator already stripped)
// as one event layout. It succeeds only when the payload length matches exactly.
type payloadParser func(data []byte) (*Event, bool)

// candidateParsers is the fixed priority order for payload interpretation.
// Donated and Withdrawn share a byte layout (8 + 32 + 8), so for 48-byte
// payloads Donated always wins. The ambiguity is deliberate and kept visible
// here rather than hidden behind discriminator matching.
var candidateParsers = []payloadParser{
	parseCreated,
	parseDonated,
	parseWithdrawn,
}

// Decode scans log lines in order and returns the first event that decodes
// from a "Program data: " line, or nil when no line yields one. Absence of an
// event is the common case and is not an error. Decode performs no I/O.
func Decode(logs []string) *Event {
	for _, line := range logs {
		data, ok := strings.CutPrefix(line, ProgramDataPrefix)
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
		if err != nil || len(raw) < discriminatorLen {
			continue
		}

		payload := raw[discriminatorLen:]
		for _, parse := range candidateParsers {
			if ev, ok := parse(payload); ok {
				return ev
			}
		}
	}
	return nil
}

// parseCreated interprets: campaign_id u64 | creator 32B | goal u64 | deadline i64 |
// metadata_url (u32 length prefix + UTF-8 bytes). Borsh little-endian encoding.
func parseCreated(data []byte) (*Event, bool) {
	const fixed = 8 + 32 + 8 + 8 + 4
	if len(data) < fixed {
		return nil, false
	}

	urlLen := binary.LittleEndian.Uint32(data[56:60])
	if uint64(len(data)) != uint64(fixed)+uint64(urlLen) {
		return nil, false
	}

	url := data[fixed:]
	if !utf8.Valid(url) {
		return nil, false
	}

	return &Event{
		Kind:        KindCreated,
		CampaignID:  binary.LittleEndian.Uint64(data[0:8]),
		Pubkey:      base58.Encode(data[8:40]),
		GoalAmount:  binary.LittleEndian.Uint64(data[40:48]),
		Deadline:    int64(binary.LittleEndian.Uint64(data[48:56])),
		MetadataURL: string(url),
	}, true
}

// parseDonated interprets: campaign_id u64 | donor 32B | amount u64.
func parseDonated(data []byte) (*Event, bool) {
	if len(data) != 8+32+8 {
		return nil, false
	}
	return &Event{
		Kind:       KindDonated,
		CampaignID: binary.LittleEndian.Uint64(data[0:8]),
		Pubkey:     base58.Encode(data[8:40]),
		Amount:     binary.LittleEndian.Uint64(data[40:48]),
	}, true
}

// parseWithdrawn interprets: campaign_id u64 | creator 32B | amount u64.
func parseWithdrawn(data []byte) (*Event, bool) {
	if len(data) != 8+32+8 {
		return nil, false
	}
	return &Event{
		Kind:       KindWithdrawn,
		CampaignID: binary.LittleEndian.Uint64(data[0:8]),
		Pubkey:     base58.Encode(data[8:40]),
		Amount:     binary.LittleEndian.Uint64(data[40:48]),
	}, true
}
