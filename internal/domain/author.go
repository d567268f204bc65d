package domain

// Author описывает автора каталога.
type Author struct {
	ID        int64
	Name      string
	Biography string
}

// ValidateInvariants проверяет обязательные поля автора.
func (a *Author) ValidateInvariants() []error {
	var errs []error

	if a.Name == "" {
		errs = append(errs, ErrAuthorNameRequired)
	}

	return errs
}
