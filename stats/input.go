package stats

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxDigits is the largest number of fractional digits a value can be
// rounded to.
const MaxDigits = 100

var (
	// ErrDigitsRange is returned when Settings.Digits is outside [0, MaxDigits].
	ErrDigitsRange = errors.New("digits out of range")
	// ErrMissingSettings is returned by DecodeInput for a payload whose
	// settings object is absent or null.
	ErrMissingSettings = errors.New("input has no settings")
)

// Settings selects the statistic and its rounding.
// A nil Digits means the value is shown unrounded.
type Settings struct {
	Statistic Statistic `json:"statistic"`
	Digits    *int      `json:"digits"`
}

// Validate reports whether the settings can be rendered.
// Unknown statistics are not an error; they compute 0.
func (s Settings) Validate() error {
	if s.Digits != nil && (*s.Digits < 0 || *s.Digits > MaxDigits) {
		return errors.Wrapf(ErrDigitsRange, "digits %d (valid: 0-%d)", *s.Digits, MaxDigits)
	}
	return nil
}

// Input is the payload a widget host delivers on every render.
type Input struct {
	Data     Dataset  `json:"data"`
	Settings Settings `json:"settings"`
}

// Value computes the configured statistic over the input data.
func (in *Input) Value() float64 {
	return Compute(in.Settings.Statistic, in.Data)
}

// Request is the wire form of an Input whose settings may be omitted.
type Request struct {
	Data     Dataset   `json:"data"`
	Settings *Settings `json:"settings"`
}

// Input resolves the request, using fallback when it carries no settings.
func (req *Request) Input(fallback Settings) *Input {
	in := &Input{Data: req.Data, Settings: fallback}
	if req.Settings != nil {
		in.Settings = *req.Settings
	}
	return in
}

// DecodeRequest reads one JSON-encoded Request from r.
func DecodeRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.Wrap(err, "decoding input")
	}
	return &req, nil
}

// DecodeInput reads one JSON-encoded Input from r. The settings object is
// required; use DecodeRequest when the caller has defaults to fall back on.
func DecodeInput(r io.Reader) (*Input, error) {
	req, err := DecodeRequest(r)
	if err != nil {
		return nil, err
	}
	if req.Settings == nil {
		return nil, ErrMissingSettings
	}
	return &Input{Data: req.Data, Settings: *req.Settings}, nil
}

// ParseValues parses a comma or whitespace separated list of numbers.
// Returns an error naming the first token that is not a number.
func ParseValues(s string) (Dataset, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	data := make(Dataset, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value %q", f)
		}
		data = append(data, v)
	}
	return data, nil
}
