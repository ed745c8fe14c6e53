package memory

import "factura/internal/domain"

func listAll() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Limit = domain.MaxLimit
	return f
}
