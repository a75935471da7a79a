package domain

import "fmt"

// Money — стоимость приема: сумма в минимальных единицах валюты.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, NewError(ErrInvalidArgument, "money.amount.negative").
			WithField("amount", amount)
	}
	if currency == "" {
		return Money{}, NewError(ErrInvalidArgument, "money.currency.empty")
	}
	return Money{Amount: amount, Currency: currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
