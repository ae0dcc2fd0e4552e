package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BusinessPayerName nombre visible de la caja del negocio.
const BusinessPayerName = "Sanse"

// Payer quién pagó un gasto: el negocio o un usuario al que se le debe el reintegro.
// El valor cero es el negocio.
type Payer struct {
	userID string
}

// BusinessPayer el gasto lo pagó la caja del negocio.
func BusinessPayer() Payer { return Payer{} }

// UserPayer el gasto lo pagó un usuario de su bolsillo.
func UserPayer(userID string) Payer { return Payer{userID: userID} }

// PayerFromID reconstruye el pagador desde la columna nullable payer_id.
func PayerFromID(id *string) Payer {
	if id == nil || *id == "" {
		return BusinessPayer()
	}
	return UserPayer(*id)
}

// ParsePayer interpreta el pagador recibido del cliente: vacío o "SANSE" es el negocio.
func ParsePayer(id string) Payer {
	id = strings.TrimSpace(id)
	if id == "" || strings.EqualFold(id, BusinessPayerName) {
		return BusinessPayer()
	}
	return UserPayer(id)
}

// IsBusiness indica si pagó el negocio.
func (p Payer) IsBusiness() bool { return p.userID == "" }

// UserID devuelve el usuario pagador; ok=false si pagó el negocio.
func (p Payer) UserID() (string, bool) { return p.userID, p.userID != "" }

// ID devuelve el valor para persistir (nil = negocio).
func (p Payer) ID() *string {
	if p.userID == "" {
		return nil
	}
	id := p.userID
	return &id
}

func (p Payer) String() string {
	if p.IsBusiness() {
		return BusinessPayerName
	}
	return p.userID
}

// Expense asiento del libro de caja. Un reintegro es un Expense pagado por el negocio
// con RelatedExpenseID apuntando al gasto original que devuelve.
type Expense struct {
	ID               string
	Description      string
	Amount           decimal.Decimal
	Payer            Payer
	RelatedExpenseID *string
	Date             time.Time
	CreatedAt        time.Time
}

// IsRefund indica si el asiento es un reintegro.
func (e *Expense) IsRefund() bool {
	return e.Payer.IsBusiness() && e.RelatedExpenseID != nil
}
