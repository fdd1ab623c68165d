package orders

import (
	"slices"
	"strings"

	"mealplan-system/internal/money"
)

type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RoleGuest        Role = "GUEST"
	RoleAdmin        Role = "ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleGuest, RoleAdmin, RoleCompanyAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role may manage orders. A company admin is
// limited to their active company.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleCompanyAdmin }

const (
	MembershipActive   = "ACTIVE"
	MembershipArchived = "ARCHIVED"
)

// CompanyMembership links a customer to a company on one shift.
type CompanyMembership struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Shift       string      `json:"shift"`
	ShiftBudget money.Cents `json:"shiftBudget"`
	Address     Address     `json:"address"`
	Status      string      `json:"status"`
}

func (m CompanyMembership) Ref() CompanyRef {
	return CompanyRef{ID: m.ID, Name: m.Name, Code: m.Code, Shift: m.Shift}
}

type Customer struct {
	ID        string              `json:"_id"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Email     string              `json:"email"`
	Role      Role                `json:"role"`
	Companies []CompanyMembership `json:"companies"`
}

func (c Customer) Ref() CustomerRef {
	return CustomerRef{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Customer) IsGuest() bool { return c.Role == RoleGuest }

// ActiveCompany returns the membership whose status is ACTIVE.
func (c Customer) ActiveCompany() (CompanyMembership, bool) {
	for _, m := range c.Companies {
		if m.Status == MembershipActive {
			return m, true
		}
	}
	return CompanyMembership{}, false
}

// BelongsTo reports whether the customer holds a membership in companyID.
func (c Customer) BelongsTo(companyID string) bool {
	return slices.ContainsFunc(c.Companies, func(m CompanyMembership) bool { return m.ID == companyID })
}

// ShiftBudget is the active company's shift budget, zero without one.
func (c Customer) ShiftBudget() money.Cents {
	m, ok := c.ActiveCompany()
	if !ok {
		return money.Zero
	}
	return m.ShiftBudget
}
