package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Staff() StaffRepository
	Orders() OrderRepository
	Tables() TableRepository
	Products() ProductRepository
}

// UnitOfWork runs fn against repositories bound to one transaction.
// Changes made through the factory commit together when fn returns nil.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Factory) error) error
}
