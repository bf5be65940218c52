package fields

import (
	"github.com/wmjtyd/libstock/pkg/data/num"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
)

// Decimal5 stores a decimal whose magnitude fits in 32 bits (5 bytes).
type Decimal5 struct{ Value num.Decimal }

// Decimal10 stores a decimal whose magnitude fits in 64 bits (10 bytes).
type Decimal10 struct{ Value num.Decimal }

func (d *Decimal5) Size() int { return num.Size5 }

func (d *Decimal5) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(d, dst); err != nil {
		return err
	}
	enc, err := num.Encode5(d.Value)
	if err != nil {
		return numError(err)
	}
	copy(dst, enc[:])
	return nil
}

func (d *Decimal5) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(d, src); err != nil {
		return err
	}
	d.Value = num.Decode5([num.Size5]byte(src))
	return nil
}

func (d *Decimal10) Size() int { return num.Size10 }

func (d *Decimal10) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(d, dst); err != nil {
		return err
	}
	enc, err := num.Encode10(d.Value)
	if err != nil {
		return numError(err)
	}
	copy(dst, enc[:])
	return nil
}

func (d *Decimal10) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(d, src); err != nil {
		return err
	}
	d.Value = num.Decode10([num.Size10]byte(src))
	return nil
}

// DecimalFromFloat converts an application float into a decimal value.
func DecimalFromFloat(f float64) (num.Decimal, error) {
	d, err := num.FromFloat64(f)
	if err != nil {
		return num.Decimal{}, numError(err)
	}
	return d, nil
}

// DecimalToFloat is the inverse of DecimalFromFloat.
func DecimalToFloat(d num.Decimal) (float64, error) {
	f, err := d.Float64()
	if err != nil {
		return 0, numError(err)
	}
	return f, nil
}

// Float64 helpers for the two widths.
func (d *Decimal5) Float64() (float64, error)  { return DecimalToFloat(d.Value) }
func (d *Decimal10) Float64() (float64, error) { return DecimalToFloat(d.Value) }

func NewDecimal5(f float64) (Decimal5, error) {
	d, err := DecimalFromFloat(f)
	return Decimal5{Value: d}, err
}

func NewDecimal10(f float64) (Decimal10, error) {
	d, err := DecimalFromFloat(f)
	return Decimal10{Value: d}, err
}
