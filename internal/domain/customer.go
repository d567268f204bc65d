package domain

// Customer описывает покупателя магазина.
type Customer struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// ValidateInvariants проверяет обязательные поля покупателя.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}

	return errs
}
