package booking

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"tuwi/models"
)

var (
	phonePattern     = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
	phoneSeparators  = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// fieldMessages maps "<json field>.<tag>" to the message shown to clients.
var fieldMessages = map[string]string{
	"braiderId.required":        "Trancista é obrigatória",
	"serviceId.required":        "Serviço é obrigatório",
	"clientName.required":       "Nome é obrigatório",
	"clientEmail.required":      "Email é obrigatório",
	"clientEmail.email":         "Email inválido",
	"clientPhone.required":      "Telefone é obrigatório",
	"clientPhone.phone":         "Telefone inválido",
	"date.required":             "Data é obrigatória",
	"date.datetime":             "Data inválida (use AAAA-MM-DD)",
	"time.required":             "Hora é obrigatória",
	"time.timeofday":            "Hora inválida (use HH:MM)",
	"bookingType.required":      "Tipo de atendimento é obrigatório",
	"bookingType.oneof":         "Tipo de atendimento inválido (domicilio ou trancista)",
	"clientAddress.required_if": "Morada é obrigatória para atendimento ao domicílio",
}

// payloadFields lists the accepted JSON fields in the order they are validated.
var payloadFields = []string{
	"braiderId", "serviceId", "clientName", "clientEmail", "clientPhone",
	"date", "time", "bookingType", "clientAddress", "notes", "availabilityId",
}

// Validator turns untyped booking payloads into canonical requests. It has no
// side effects.
type Validator struct {
	validate *validator.Validate
	notesMax int
}

func NewValidator(notesMax int) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		return timeOfDayPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notesmax", func(fl validator.FieldLevel) bool {
		return notesMax <= 0 || utf8.RuneCountInString(fl.Field().String()) <= notesMax
	})
	return &Validator{validate: v, notesMax: notesMax}
}

// ValidateMap validates a decoded JSON object. Any non-string value for a known
// field is rejected before the field rules run.
func (v *Validator) ValidateMap(raw map[string]any) (*models.BookingRequest, error) {
	values := make(map[string]string, len(payloadFields))
	for _, field := range payloadFields {
		val, ok := raw[field]
		if !ok || val == nil {
			continue
		}
		s, ok := val.(string)
		if !ok {
			return nil, &ValidationError{Field: field, Message: fmt.Sprintf("Campo %s deve ser texto", field)}
		}
		values[field] = s
	}

	return v.Validate(models.CreateBookingPayload{
		BraiderID:      values["braiderId"],
		ServiceID:      values["serviceId"],
		ClientName:     values["clientName"],
		ClientEmail:    values["clientEmail"],
		ClientPhone:    values["clientPhone"],
		Date:           values["date"],
		Time:           values["time"],
		BookingType:    values["bookingType"],
		ClientAddress:  values["clientAddress"],
		Notes:          values["notes"],
		AvailabilityID: values["availabilityId"],
	})
}

// Validate normalizes p and checks it, returning the first violated rule.
func (v *Validator) Validate(p models.CreateBookingPayload) (*models.BookingRequest, error) {
	p.BraiderID = strings.TrimSpace(p.BraiderID)
	p.ServiceID = strings.TrimSpace(p.ServiceID)
	p.ClientName = strings.TrimSpace(p.ClientName)
	p.ClientEmail = strings.ToLower(strings.TrimSpace(p.ClientEmail))
	p.ClientPhone = normalizePhone(p.ClientPhone)
	p.Date = strings.TrimSpace(p.Date)
	p.Time = strings.TrimSpace(p.Time)
	p.BookingType = strings.ToLower(strings.TrimSpace(p.BookingType))
	p.ClientAddress = strings.TrimSpace(p.ClientAddress)
	p.Notes = strings.TrimSpace(p.Notes)
	p.AvailabilityID = strings.TrimSpace(p.AvailabilityID)

	if err := v.validate.Struct(p); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return nil, fmt.Errorf("validate booking payload: %w", err)
		}
		return nil, v.toValidationError(verrs[0])
	}

	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: fieldMessages["date.datetime"]}
	}

	req := &models.BookingRequest{
		BraiderID:   models.BraiderID(p.BraiderID),
		ServiceID:   models.ServiceID(p.ServiceID),
		ClientName:  p.ClientName,
		ClientEmail: p.ClientEmail,
		ClientPhone: p.ClientPhone,
		Date:        date,
		Time:        p.Time[:5],
		BookingType: models.BookingType(p.BookingType),
	}
	if p.ClientAddress != "" {
		req.ClientAddress = &p.ClientAddress
	}
	if p.Notes != "" {
		req.Notes = &p.Notes
	}
	if p.AvailabilityID != "" {
		id := models.AvailabilityID(p.AvailabilityID)
		req.AvailabilityID = &id
	}
	return req, nil
}

func (v *Validator) toValidationError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	if fe.Tag() == "notesmax" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("Observações devem ter no máximo %d caracteres", v.notesMax)}
	}
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return &ValidationError{Field: field, Message: msg}
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("Campo %s inválido", field)}
}

// normalizePhone drops separators, keeping a leading "+" and the digits.
func normalizePhone(phone string) string {
	phone = phoneSeparators.Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	return phone
}
