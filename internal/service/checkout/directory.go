package checkout

import "github.com/vladislavdragonenkov/bookstore/internal/domain"

// RepositoryDirectory адаптирует CustomerRepository к CustomerDirectory:
// движку нужен только факт существования покупателя.
type RepositoryDirectory struct {
	Customers domain.CustomerRepository
}

// Exists сообщает, зарегистрирован ли покупатель.
func (d RepositoryDirectory) Exists(customerID int64) bool {
	_, err := d.Customers.Get(customerID)
	return err == nil
}

var _ domain.CustomerDirectory = RepositoryDirectory{}
