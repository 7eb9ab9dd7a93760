package game

import (
	"errors"
	"fmt"

	"github.com/pefman/terraform-tracker/internal/models"
)

var (
	ErrEmptyName       = errors.New("player name is empty")
	ErrUnknownResource = errors.New("unknown resource")
	ErrNegativeDelta   = errors.New("delta must not be negative")
	ErrInsufficient    = errors.New("insufficient amount")
)

// InsufficientError is returned when a subtraction would exceed the amount held.
type InsufficientError struct {
	Resource string
	Amount   int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("%s: only %d or less can be subtracted", e.Resource, e.Amount)
}

func (e *InsufficientError) Unwrap() error { return ErrInsufficient }

// Produce runs one production phase for p.
// Energy is converted to heat before production is added, so the energy
// produced this turn stays as energy. TR is paid out in MC on top of MC production.
func Produce(p models.Player) models.Player {
	p = p.Clone()
	energy, heat := p.ByCategory(models.CategoryEnergy), p.ByCategory(models.CategoryHeat)
	if energy >= 0 && heat >= 0 {
		p.Resources[heat].Amount += p.Resources[energy].Amount
		p.Resources[energy].Amount = 0
	}
	for i := range p.Resources {
		r := &p.Resources[i]
		r.Amount += r.Production
		if r.Category == models.CategoryCurrency {
			r.Amount += p.TR
		}
	}
	return p
}

// Add increases a resource's amount by delta.
func Add(p models.Player, resourceID string, delta int) (models.Player, error) {
	if delta < 0 {
		return p, ErrNegativeDelta
	}
	i := p.ResourceIndex(resourceID)
	if i < 0 {
		return p, fmt.Errorf("%w %q", ErrUnknownResource, resourceID)
	}
	p = p.Clone()
	p.Resources[i].Amount += delta
	return p, nil
}

// Subtract decreases a resource's amount by delta. A delta larger than the
// current amount is rejected and p is returned unchanged.
func Subtract(p models.Player, resourceID string, delta int) (models.Player, error) {
	if delta < 0 {
		return p, ErrNegativeDelta
	}
	i := p.ResourceIndex(resourceID)
	if i < 0 {
		return p, fmt.Errorf("%w %q", ErrUnknownResource, resourceID)
	}
	if r := p.Resources[i]; delta > r.Amount {
		return p, &InsufficientError{Resource: r.Name, Amount: r.Amount}
	}
	p = p.Clone()
	p.Resources[i].Amount -= delta
	return p, nil
}

// SetProduction sets a resource's production, clamped to the rules' bounds.
func (r Rules) SetProduction(p models.Player, resourceID string, value int) (models.Player, error) {
	i := p.ResourceIndex(resourceID)
	if i < 0 {
		return p, fmt.Errorf("%w %q", ErrUnknownResource, resourceID)
	}
	p = p.Clone()
	p.Resources[i].Production = r.ProductionBounds(p.Resources[i].Category).Clamp(value)
	return p, nil
}

// AdjustTR moves the player's TR by delta within the TR bounds.
func (r Rules) AdjustTR(p models.Player, delta int) models.Player {
	p.TR = r.TR.Clamp(p.TR + delta)
	return p
}

// Reset zeroes every amount and production and restores the starting TR.
func (r Rules) Reset(p models.Player) models.Player {
	p = p.Clone()
	for i := range p.Resources {
		p.Resources[i].Amount = 0
		p.Resources[i].Production = 0
	}
	p.TR = r.StartingTR
	return p
}
