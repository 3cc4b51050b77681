package job

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"subnode/internal/services"
)

// Caption placements.
const (
	PositionBottom = "bottom"
	PositionMiddle = "middle"
	PositionTop    = "top"
)

// Caption text treatments.
const (
	StyleNormal = "normal"
	StyleBold   = "bold"
	StyleItalic = "italic"
	StyleBoxed  = "boxed"
)

// Style defaults exposed to node hosts.
const (
	DefaultFontName  = "Arial"
	DefaultFontSize  = 24.0
	DefaultFontColor = "FFFFFF"
	DefaultPosition  = PositionBottom
	DefaultStyle     = StyleNormal
)

// StyleParameters govern how captions are rendered into the video.
type StyleParameters struct {
	FontName           string  `json:"font_name" validate:"required,max=128,excludesall=:'0x2C"`
	FontSize           float64 `json:"font_size" validate:"gt=0,lte=512"`
	FontColor          string  `json:"font_color" validate:"required,len=6,hexadecimal"`
	Position           string  `json:"subtitle_position" validate:"oneof=bottom middle top"`
	Style              string  `json:"subtitle_style" validate:"oneof=normal bold italic boxed"`
	TranslateToEnglish bool    `json:"translate_to_english"`
}

// DefaultStyleParameters returns the style used when a host supplies no overrides.
func DefaultStyleParameters() StyleParameters {
	return StyleParameters{
		FontName:  DefaultFontName,
		FontSize:  DefaultFontSize,
		FontColor: DefaultFontColor,
		Position:  DefaultPosition,
		Style:     DefaultStyle,
	}
}

// Normalize trims whitespace, strips a leading '#' from the colour, and
// upper-cases it. Empty position and style fall back to their defaults.
func (s StyleParameters) Normalize() StyleParameters {
	s.FontName = strings.TrimSpace(s.FontName)
	s.FontColor = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s.FontColor), "#"))
	s.Position = strings.ToLower(strings.TrimSpace(s.Position))
	if s.Position == "" {
		s.Position = DefaultPosition
	}
	s.Style = strings.ToLower(strings.TrimSpace(s.Style))
	if s.Style == "" {
		s.Style = DefaultStyle
	}
	return s
}

// Validate checks the parameters and returns an error matching
// services.ErrValidation that names every offending field.
func (s StyleParameters) Validate() error {
	err := styleValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return services.Wrap(services.ErrValidation, "", "validate style", "", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+": "+describeFieldError(fe))
	}
	return services.Wrap(services.ErrValidation, "", "validate style", strings.Join(messages, "; "), nil)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func styleValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "hexadecimal":
		return "must be hexadecimal RRGGBB"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "excludesall":
		return "must not contain filter delimiters"
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}
