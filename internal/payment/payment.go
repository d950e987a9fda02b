// Package payment implements the cash/card payment selector as an
// explicit state machine:
//
//	Cash -> CardPending -> Card(bank) -> Cash (on reset or cancel)
//
// CardPending means the bank picker is open; it is never a valid state
// for checkout submission.
package payment

import (
	"errors"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

// ErrNoPendingSelection reports a bank confirm/cancel without an open picker.
var ErrNoPendingSelection = errors.New("no bank selection in progress")

type Selector struct {
	state domain.PaymentSelection
}

func NewSelector() *Selector {
	return &Selector{state: domain.PaymentSelection{Kind: domain.PaymentCash}}
}

// State returns the current selection, including the transient CardPending.
func (s *Selector) State() domain.PaymentSelection {
	return s.state
}

// SelectCash commits cash from any state and clears any chosen bank.
func (s *Selector) SelectCash() {
	s.state = domain.PaymentSelection{Kind: domain.PaymentCash}
}

// SelectCard opens the bank picker. No card payment is committed until a
// bank is confirmed.
func (s *Selector) SelectCard() {
	s.state = domain.PaymentSelection{Kind: domain.PaymentCardPending}
}

// ConfirmBank commits a card payment with the chosen bank.
func (s *Selector) ConfirmBank(bank domain.Bank) error {
	if s.state.Kind != domain.PaymentCardPending {
		return ErrNoPendingSelection
	}
	s.state = domain.PaymentSelection{Kind: domain.PaymentCard, Bank: bank}
	return nil
}

// CancelBankSelection closes the picker and reverts to cash. A previous
// card choice is not retained.
func (s *Selector) CancelBankSelection() error {
	if s.state.Kind != domain.PaymentCardPending {
		return ErrNoPendingSelection
	}
	s.state = domain.PaymentSelection{Kind: domain.PaymentCash}
	return nil
}

// Pending reports whether the bank picker is open.
func (s *Selector) Pending() bool {
	return s.state.Kind == domain.PaymentCardPending
}

// Reset returns the selector to cash. Used when the cart is cleared.
func (s *Selector) Reset() {
	s.SelectCash()
}
