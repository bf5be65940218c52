package fields

import (
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// PriceData is a price and base quantity, 5 bytes each.
type PriceData struct {
	Price        Decimal5
	QuantityBase Decimal5
}

// PriceData20 is the wide form, 10 bytes each.
type PriceData20 struct {
	Price        Decimal10
	QuantityBase Decimal10
}

const (
	PriceDataSize   = 10
	PriceData20Size = 20
)

func (p *PriceData) Size() int { return PriceDataSize }

func (p *PriceData) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(p, dst); err != nil {
		return err
	}
	if err := p.Price.MarshalTo(dst[:5]); err != nil {
		return err
	}
	return p.QuantityBase.MarshalTo(dst[5:])
}

func (p *PriceData) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(p, src); err != nil {
		return err
	}
	if err := p.Price.UnmarshalFrom(src[:5]); err != nil {
		return err
	}
	return p.QuantityBase.UnmarshalFrom(src[5:])
}

// PriceDataFromOrder keeps price and base quantity of o.
func PriceDataFromOrder(o market.Order) (PriceData, error) {
	price, err := NewDecimal5(o.Price)
	if err != nil {
		return PriceData{}, err
	}
	qty, err := NewDecimal5(o.QuantityBase)
	if err != nil {
		return PriceData{}, err
	}
	return PriceData{Price: price, QuantityBase: qty}, nil
}

// Order converts back; quote and contract quantities are not stored.
func (p *PriceData) Order() (market.Order, error) {
	price, err := p.Price.Float64()
	if err != nil {
		return market.Order{}, err
	}
	qty, err := p.QuantityBase.Float64()
	if err != nil {
		return market.Order{}, err
	}
	return market.Order{Price: price, QuantityBase: qty}, nil
}

func (p *PriceData20) Size() int { return PriceData20Size }

func (p *PriceData20) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(p, dst); err != nil {
		return err
	}
	if err := p.Price.MarshalTo(dst[:10]); err != nil {
		return err
	}
	return p.QuantityBase.MarshalTo(dst[10:])
}

func (p *PriceData20) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(p, src); err != nil {
		return err
	}
	if err := p.Price.UnmarshalFrom(src[:10]); err != nil {
		return err
	}
	return p.QuantityBase.UnmarshalFrom(src[10:])
}

func PriceData20FromOrder(o market.Order) (PriceData20, error) {
	price, err := NewDecimal10(o.Price)
	if err != nil {
		return PriceData20{}, err
	}
	qty, err := NewDecimal10(o.QuantityBase)
	if err != nil {
		return PriceData20{}, err
	}
	return PriceData20{Price: price, QuantityBase: qty}, nil
}

func (p *PriceData20) Order() (market.Order, error) {
	price, err := p.Price.Float64()
	if err != nil {
		return market.Order{}, err
	}
	qty, err := p.QuantityBase.Float64()
	if err != nil {
		return market.Order{}, err
	}
	return market.Order{Price: price, QuantityBase: qty}, nil
}
