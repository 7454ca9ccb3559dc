package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is an exact decimal amount. It is stored as Decimal128 so totals
// never pick up binary floating point drift.
type Money struct {
	decimal.Decimal
}

var ZeroMoney = Money{decimal.Zero}

func NewMoney(d decimal.Decimal) Money {
	return Money{d}
}

// ParseMoney accepts plain decimal strings such as "12.50".
func ParseMoney(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Money{d}, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(value string) Money {
	m, err := ParseMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyFromInt(value int64) Money {
	return Money{decimal.NewFromInt(value)}
}

// PriceScale and MaxPrice describe the numeric(10,2) price column. A price
// outside them cannot be stored without rounding.
const PriceScale = 2

var MaxPrice = MustMoney("99999999.99")

// HasPriceScale reports whether m needs no more than PriceScale decimal
// places. Trailing zeros are allowed.
func (m Money) HasPriceScale() bool {
	return m.Decimal.Equal(m.Decimal.Round(PriceScale))
}

func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Times multiplies a unit price by a line quantity.
func (m Money) Times(quantity int) Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// MarshalBSONValue always stores the amount as Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128 as well as the numeric and string
// encodings older documents might carry.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
		return nil
	case bsontype.Decimal128:
		var d128 primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &d128); err != nil {
			return err
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case bsontype.Double:
		var f float64
		if err := bson.UnmarshalValue(t, data, &f); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromFloat(f)
		return nil
	case bsontype.Int32, bsontype.Int64:
		var i int64
		if err := bson.UnmarshalValue(t, data, &i); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromInt(i)
		return nil
	case bsontype.String:
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
}
