package wallet

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Step is a wizard screen.
type Step string

const (
	StepAmount  Step = "amount"
	StepMethod  Step = "method"
	StepConfirm Step = "confirm"
	StepDone    Step = "done"
)

// Deposit payment methods.
const (
	MethodCard   = "card"
	MethodBank   = "bank"
	MethodCrypto = "crypto"
)

// Withdrawal networks.
const (
	NetworkERC20 = "erc20"
	NetworkTRC20 = "trc20"
	NetworkBank  = "bank"
)

// Draft is the transaction being assembled by a wizard.
type Draft struct {
	Kind        Kind   `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method,omitempty"`
	Network     string `json:"network,omitempty"`
}

// isStepTransitionAllowed enforces the wizard order. Done is only reached
// through Submit and is terminal.
func isStepTransitionAllowed(from, to Step) bool {
	switch from {
	case StepAmount:
		return to == StepMethod
	case StepMethod:
		return to == StepAmount || to == StepConfirm
	case StepConfirm:
		return to == StepMethod || to == StepDone
	default:
		return false
	}
}

// Wizard walks a user through one deposit or withdrawal.
type Wizard struct {
	wallet *Wallet

	mu         sync.Mutex
	step       Step
	draft      Draft
	submitting bool
	result     Transaction
}

// NewWizard starts a wizard for kind at the amount step.
func (w *Wallet) NewWizard(kind Kind) (*Wizard, error) {
	if kind != KindDeposit && kind != KindWithdrawal {
		return nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown transaction kind %q", kind))
	}
	return &Wizard{wallet: w, step: StepAmount, draft: Draft{Kind: kind}}, nil
}

// Step returns the current screen.
func (z *Wizard) Step() Step {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.step
}

// Draft returns the transaction assembled so far.
func (z *Wizard) Draft() Draft {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.draft
}

// SetAmount records the amount. Only allowed on the amount screen.
func (z *Wizard) SetAmount(cents int64) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if err := z.requireStep(StepAmount); err != nil {
		return err
	}
	if cents <= 0 {
		return apperrors.EK(apperrors.KindValidation, "error.wallet.amount_not_positive", "amount must be positive")
	}
	z.draft.AmountCents = cents
	return nil
}

// SetMethod records the deposit payment method or withdrawal network. Only
// allowed on the method screen.
func (z *Wizard) SetMethod(value string) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if err := z.requireStep(StepMethod); err != nil {
		return err
	}
	if !validMethod(z.draft.Kind, value) {
		return apperrors.EK(apperrors.KindValidation, "error.wallet.unknown_method", fmt.Sprintf("%q is not a %s method", value, z.draft.Kind))
	}
	if z.draft.Kind == KindDeposit {
		z.draft.Method = value
	} else {
		z.draft.Network = value
	}
	return nil
}

func validMethod(kind Kind, value string) bool {
	switch kind {
	case KindDeposit:
		return value == MethodCard || value == MethodBank || value == MethodCrypto
	case KindWithdrawal:
		return value == NetworkERC20 || value == NetworkTRC20 || value == NetworkBank
	default:
		return false
	}
}

// Next advances one screen once the current screen is complete.
func (z *Wizard) Next() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	var to Step
	switch z.step {
	case StepAmount:
		if z.draft.AmountCents <= 0 {
			return apperrors.E(apperrors.KindValidation, "amount is required")
		}
		to = StepMethod
	case StepMethod:
		if !validMethod(z.draft.Kind, z.method()) {
			return apperrors.E(apperrors.KindValidation, "method is required")
		}
		to = StepConfirm
	default:
		return z.illegal("next")
	}
	return z.move(to)
}

// Back returns one screen. Entered values are kept.
func (z *Wizard) Back() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.submitting {
		return apperrors.E(apperrors.KindBusy, "transaction is being submitted")
	}
	switch z.step {
	case StepMethod:
		return z.move(StepAmount)
	case StepConfirm:
		return z.move(StepMethod)
	default:
		return z.illegal("back")
	}
}

// Submit sends the draft from the confirm screen and records the created
// transaction in the wallet. A failed request leaves the wizard on the
// confirm screen so the user can retry.
func (z *Wizard) Submit(ctx context.Context) (Transaction, error) {
	z.mu.Lock()
	if z.step != StepConfirm {
		defer z.mu.Unlock()
		return Transaction{}, z.illegal("submit")
	}
	if z.submitting {
		z.mu.Unlock()
		return Transaction{}, apperrors.E(apperrors.KindBusy, "transaction is being submitted")
	}
	z.submitting = true
	draft := z.draft
	z.mu.Unlock()

	created, err := z.wallet.gateway.CreateTransaction(ctx, draft)
	if err == nil && created.ID == 0 {
		err = apperrors.E(apperrors.KindNetwork, "malformed response: created transaction has no id")
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	z.submitting = false
	if err != nil {
		return Transaction{}, apperrors.FromTransport(err)
	}
	z.result = created
	z.step = StepDone
	if err := z.wallet.store.Insert(created); err != nil {
		return created, err
	}
	return created, nil
}

// Result returns the created transaction once the wizard is done.
func (z *Wizard) Result() (Transaction, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.result, z.step == StepDone
}

func (z *Wizard) method() string {
	if z.draft.Kind == KindDeposit {
		return z.draft.Method
	}
	return z.draft.Network
}

func (z *Wizard) move(to Step) error {
	if !isStepTransitionAllowed(z.step, to) {
		return z.illegal(string(to))
	}
	z.step = to
	return nil
}

func (z *Wizard) requireStep(step Step) error {
	if z.step != step {
		return apperrors.E(apperrors.KindValidation, fmt.Sprintf("wizard is on %s, not %s", z.step, step))
	}
	return nil
}

func (z *Wizard) illegal(action string) error {
	return apperrors.EK(apperrors.KindValidation, "error.wallet.illegal_step", fmt.Sprintf("cannot %s from %s", action, z.step))
}
