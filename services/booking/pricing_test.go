package booking

import (
	"testing"

	"tuwi/models"
)

func TestPricerTotal(t *testing.T) {
	fee := 7.5
	tests := []struct {
		name string
		svc  models.Service
		bt   models.BookingType
		want float64
	}{
		{"at braider", models.Service{Price: 45}, models.BookingTypeTrancista, 45},
		{"home visit default fee", models.Service{Price: 45}, models.BookingTypeDomicilio, 55},
		{"home visit service fee", models.Service{Price: 45, HomeServiceFee: &fee}, models.BookingTypeDomicilio, 52.5},
		{"rounded to cents", models.Service{Price: 19.999}, models.BookingTypeTrancista, 20},
	}

	p := Pricer{DefaultHomeServiceFee: 10}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Total(tt.svc, tt.bt); got != tt.want {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}
