package extraction

import (
	"bytes"
	"math"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/optional"
)

var ErrInvalidShape = errors.New("oracle response has an invalid shape")

type wirePlayer struct {
	Name        string `json:"name" validate:"required,max=120"`
	Role        string `json:"role" validate:"omitempty,oneof=current target"`
	CurrentClub string `json:"current_club" validate:"max=120"`
}

type wireClub struct {
	Name string `json:"name" validate:"required,max=120"`
	Role string `json:"role" validate:"omitempty,oneof=current destination interested"`
}

// UnmarshalJSON accepts a bare club name as an interested club.
func (c *wireClub) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := sonic.ConfigStd.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*c = wireClub{Name: name, Role: string(playerlink.RoleInterested)}
		return nil
	}
	type plain wireClub
	var v plain
	if err := sonic.ConfigStd.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*c = wireClub(v)
	return nil
}

type wireEvent struct {
	Type       string   `json:"type" validate:"max=40"`
	Details    string   `json:"details" validate:"max=2000"`
	Confidence *float64 `json:"confidence" validate:"omitempty,gte=0,lte=100"`
}

// UnmarshalJSON accepts a bare string as a news event.
func (e *wireEvent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var details string
		if err := sonic.ConfigStd.Unmarshal(trimmed, &details); err != nil {
			return err
		}
		*e = wireEvent{Type: playerlink.EventTypeNews, Details: details}
		return nil
	}
	type plain wireEvent
	var v plain
	if err := sonic.ConfigStd.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*e = wireEvent(v)
	return nil
}

type wirePrice struct {
	Amount   *float64 `json:"amount" validate:"omitempty,gte=0"`
	Currency *string  `json:"currency" validate:"omitempty,max=8"`
}

type wireResponse struct {
	Players        []wirePlayer              `json:"players" validate:"dive"`
	TransferStatus optional.Field[string]    `json:"transfer_status"`
	Direction      optional.Field[string]    `json:"direction"`
	TimelineEvent  optional.Field[wireEvent] `json:"timeline_event"`
	RelatedClubs   []wireClub                `json:"related_clubs" validate:"dive"`
	Clubs          []wireClub                `json:"clubs" validate:"dive"`
	Confidence     optional.Field[float64]   `json:"confidence"`
	TransferType   optional.Field[string]    `json:"transfer_type"`
	Price          optional.Field[wirePrice] `json:"price"`
}

// Decoder turns raw oracle output into a FactDelta.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New()}
}

// Decode rejects anything that is not a JSON object of the expected shape.
func (d *Decoder) Decode(raw []byte) (FactDelta, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FactDelta{}, errors.Wrap(ErrInvalidShape, "response is not a json object")
	}

	var wire wireResponse
	if err := sonic.ConfigStd.Unmarshal(trimmed, &wire); err != nil {
		return FactDelta{}, errors.Mark(errors.Wrap(err, "decode oracle response"), ErrInvalidShape)
	}
	wire.normalize()
	if err := d.validate.Struct(wire); err != nil {
		return FactDelta{}, errors.Mark(errors.Wrap(err, "validate oracle response"), ErrInvalidShape)
	}
	if event, ok := wire.TimelineEvent.Get(); ok {
		if err := d.validate.Struct(event); err != nil {
			return FactDelta{}, errors.Mark(errors.Wrap(err, "validate timeline event"), ErrInvalidShape)
		}
	}
	if price, ok := wire.Price.Get(); ok {
		if err := d.validate.Struct(price); err != nil {
			return FactDelta{}, errors.Mark(errors.Wrap(err, "validate price"), ErrInvalidShape)
		}
	}

	return wire.toDelta()
}

func (w *wireResponse) normalize() {
	for i := range w.Players {
		w.Players[i].Name = strings.TrimSpace(w.Players[i].Name)
		w.Players[i].Role = strings.ToLower(strings.TrimSpace(w.Players[i].Role))
		w.Players[i].CurrentClub = strings.TrimSpace(w.Players[i].CurrentClub)
	}
	for _, clubs := range [][]wireClub{w.RelatedClubs, w.Clubs} {
		for i := range clubs {
			clubs[i].Name = strings.TrimSpace(clubs[i].Name)
			clubs[i].Role = strings.ToLower(strings.TrimSpace(clubs[i].Role))
		}
	}
}

func (w wireResponse) toDelta() (FactDelta, error) {
	delta := FactDelta{ok: true}

	for _, p := range w.Players {
		role := MentionRole(p.Role)
		if role == "" {
			role = MentionTarget
		}
		delta.Players = append(delta.Players, PlayerMention{Name: p.Name, Role: role, CurrentClub: p.CurrentClub})
	}

	switch w.TransferStatus.State() {
	case optional.StateNull:
		delta.Status = optional.Null[playerlink.Status]()
	case optional.StateSet:
		raw, _ := w.TransferStatus.Get()
		status, err := playerlink.ParseStatus(raw)
		if err != nil {
			return FactDelta{}, errors.Mark(err, ErrInvalidShape)
		}
		delta.Status = optional.Of(status)
	}

	switch w.Direction.State() {
	case optional.StateNull:
		delta.Direction = optional.Null[playerlink.Direction]()
	case optional.StateSet:
		raw, _ := w.Direction.Get()
		direction, err := playerlink.ParseDirection(raw)
		if err != nil {
			return FactDelta{}, errors.Mark(err, ErrInvalidShape)
		}
		if direction == playerlink.DirectionUnknown {
			delta.Direction = optional.Null[playerlink.Direction]()
		} else {
			delta.Direction = optional.Of(direction)
		}
	}

	topConfidence := -1
	switch w.Confidence.State() {
	case optional.StateNull:
		delta.Confidence = optional.Null[int]()
	case optional.StateSet:
		v, _ := w.Confidence.Get()
		if v < 0 || v > 100 || math.IsNaN(v) {
			return FactDelta{}, errors.Wrapf(ErrInvalidShape, "confidence %v out of range", v)
		}
		topConfidence = int(math.Round(v))
		delta.Confidence = optional.Of(topConfidence)
	}

	switch w.TimelineEvent.State() {
	case optional.StateNull:
		delta.Event = optional.Null[playerlink.EventSuggestion]()
	case optional.StateSet:
		v, _ := w.TimelineEvent.Get()
		confidence := topConfidence
		if v.Confidence != nil {
			confidence = int(math.Round(*v.Confidence))
		}
		if confidence < 0 {
			confidence = 0
		}
		delta.Event = optional.Of(playerlink.EventSuggestion{
			Type:       strings.TrimSpace(v.Type),
			Details:    strings.TrimSpace(v.Details),
			Confidence: confidence,
		})
	}

	clubs := w.RelatedClubs
	if len(clubs) == 0 {
		clubs = w.Clubs
	}
	for _, c := range clubs {
		delta.RelatedClubs = append(delta.RelatedClubs, playerlink.RelatedClub{
			Name: c.Name,
			Role: playerlink.ParseRole(c.Role),
		})
	}

	switch w.TransferType.State() {
	case optional.StateNull:
		delta.TransferType = optional.Null[playerlink.TransferType]()
	case optional.StateSet:
		v, _ := w.TransferType.Get()
		if transferType := playerlink.ParseTransferType(v); transferType != "" {
			delta.TransferType = optional.Of(transferType)
		} else {
			delta.TransferType = optional.Null[playerlink.TransferType]()
		}
	}

	// A price without a positive amount carries nothing to store.
	switch w.Price.State() {
	case optional.StateNull:
		delta.Price = optional.Null[playerlink.Price]()
	case optional.StateSet:
		v, _ := w.Price.Get()
		if v.Amount == nil || *v.Amount <= 0 || math.IsInf(*v.Amount, 0) {
			delta.Price = optional.Null[playerlink.Price]()
			break
		}
		price := playerlink.Price{Amount: *v.Amount}
		if v.Currency != nil {
			price.Currency = playerlink.NormalizeCurrency(*v.Currency)
		}
		delta.Price = optional.Of(price)
	}
	return delta, nil
}
